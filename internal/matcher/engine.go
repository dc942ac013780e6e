package matcher

import (
	"fmt"

	"bank-reconciliation-engine/internal/events"
	"bank-reconciliation-engine/pkg/logger"
)

// Engine applies the rule catalogue to worksheets in priority order.
// An engine is safe to reuse across sheets; it holds no per-sheet state.
type Engine struct {
	cfg   *Config
	rules []Rule
	env   *Env
	log   logger.Logger
}

// Result is the outcome of one pass over one sheet.
type Result struct {
	Sheet string `json:"sheet"`

	// MatchColumn is the header the codes were written to.
	MatchColumn string `json:"match_column"`

	// Columns maps each resolved logical field to the physical header the
	// synonym resolution chose.
	Columns map[string]string `json:"columns"`

	// Rules holds one report per catalogue rule, in application order.
	Rules []RuleReport `json:"rules"`

	// CodeCounts tallies rows per final match code, zero included.
	CodeCounts map[int]int `json:"code_counts"`

	// StandingOrderRows lists the row indexes tagged by rule 2; they are
	// the input of the supplier enrichment.
	StandingOrderRows []int `json:"-"`
}

// Explained returns the number of rows carrying a non-zero match code.
func (r *Result) Explained() int {
	total := 0
	for code, n := range r.CodeCounts {
		if code != CodeNone {
			total += n
		}
	}
	return total
}

// NewEngine creates an engine with the full rule catalogue. A nil config
// gets the production defaults.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching configuration: %w", err)
	}

	return &Engine{
		cfg: cfg,
		rules: []Rule{
			newOVRCRule(),
			newStandingOrderRule(),
			newTransferRule(),
			newChecksRule(),
			newFeeRule(),
			newProcessorRule(),
			newPhraseRule("custody_checks", CodeCustody,
				func(c *Config) int { return c.CustodyCode },
				func(c *Config) string { return c.CustodyPhrase }),
			newPhraseRule("transmitted_deposits", CodeTransmitted,
				func(c *Config) int { return c.TransmittedCode },
				func(c *Config) string { return c.TransmittedPhrase }),
			newPhraseRule("machine_deposits", CodeMachine,
				func(c *Config) int { return c.MachineCode },
				func(c *Config) string { return c.MachinePhrase }),
			newMiscRule(),
			&passThroughRule{name: "reserved_11", code: CodeReserved11},
			&passThroughRule{name: "reserved_12", code: CodeReserved12},
		},
		env: &Env{},
		log: logger.GetGlobalLogger().WithComponent("matcher"),
	}, nil
}

// SetEvents supplies the aggregated auxiliary transfer index. Without it
// the transfer rule reports itself not applicable.
func (e *Engine) SetEvents(idx *events.Index) {
	e.env.Events = idx
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.cfg.Clone()
}

// Run applies every rule to the sheet in catalogue order and writes the
// final codes back into the records.
func (e *Engine) Run(s *Sheet) *Result {
	result := &Result{
		Sheet:       s.Name,
		MatchColumn: s.MatchColumn(),
		Columns:     make(map[string]string, len(s.Columns)),
	}
	for field, header := range s.Columns {
		result.Columns[string(field)] = header
	}

	for _, rule := range e.rules {
		report := rule.Apply(s, e.cfg, e.env)
		result.Rules = append(result.Rules, report)

		log := e.log.WithFields(logger.Fields{
			"sheet": s.Name,
			"rule":  report.Rule,
			"code":  report.Code,
		})
		if !report.Applied {
			log.WithField("reason", report.Reason).Debug("Rule not applicable")
			continue
		}
		log.WithFields(logger.Fields{
			"tagged": report.Tagged,
			"pairs":  report.Pairs,
		}).Debug("Rule applied")
	}

	result.CodeCounts = s.CodeCounts()
	result.StandingOrderRows = s.RowsWithCode(CodeStanding)
	s.WriteBack()

	e.log.WithFields(logger.Fields{
		"sheet":     s.Name,
		"rows":      s.Len(),
		"explained": result.Explained(),
	}).Info("Reconciliation pass complete")

	return result
}
