// Package config translates CLI flags and environment settings into the
// component configurations used by a reconciliation run.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"bank-reconciliation-engine/internal/matcher"
	"bank-reconciliation-engine/internal/reporter"
	"bank-reconciliation-engine/pkg/logger"
)

// CreateMatchingConfig builds the rule engine configuration from the
// policy flags. Unset policies keep the production defaults.
func CreateMatchingConfig(tieBreak, checkStrategy string, overwriteStanding bool) (*matcher.Config, error) {
	cfg := matcher.DefaultConfig()

	if tieBreak != "" {
		cfg.TieBreak = matcher.TieBreakPolicy(strings.ToLower(tieBreak))
	}
	if checkStrategy != "" {
		cfg.CheckMatching = matcher.CheckStrategy(strings.ToLower(checkStrategy))
	}
	if overwriteStanding {
		cfg.AllowStandingOverwrite()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching configuration: %w", err)
	}

	return cfg, nil
}

// CreateReportConfig builds the reporter configuration for an output
// format name.
func CreateReportConfig(format string) *reporter.ReportConfig {
	cfg := reporter.DefaultReportConfig()
	if format != "" {
		cfg.Format = reporter.OutputFormat(strings.ToLower(format))
	}
	return cfg
}

// CreateLoggerConfig builds the logger configuration from the global
// flags. Verbose mode switches to debug level.
func CreateLoggerConfig() *logger.Config {
	cfg := logger.DefaultConfig()
	if viper.GetBool("verbose") {
		cfg.Level = logger.DebugLevel
	}
	if format := viper.GetString("log-format"); format != "" {
		cfg.Format = logger.Format(strings.ToLower(format))
	}
	return cfg
}
