package config

import (
	"testing"

	"bank-reconciliation-engine/internal/matcher"
	"bank-reconciliation-engine/internal/reporter"
)

func TestCreateMatchingConfigDefaults(t *testing.T) {
	cfg, err := CreateMatchingConfig("", "", false)
	if err != nil {
		t.Fatalf("CreateMatchingConfig: %v", err)
	}

	if cfg.TieBreak != matcher.TieBreakStrict {
		t.Errorf("tie break = %s, want strict", cfg.TieBreak)
	}
	if cfg.CheckMatching != matcher.CheckStrategyGreedy {
		t.Errorf("check strategy = %s, want greedy", cfg.CheckMatching)
	}
	if len(cfg.Overwritable) != 0 {
		t.Errorf("overwrite policy = %v, want empty", cfg.Overwritable)
	}
}

func TestCreateMatchingConfigPolicies(t *testing.T) {
	cfg, err := CreateMatchingConfig("Nearest", "EXHAUSTIVE", true)
	if err != nil {
		t.Fatalf("CreateMatchingConfig: %v", err)
	}

	if cfg.TieBreak != matcher.TieBreakNearest {
		t.Errorf("tie break = %s, want nearest", cfg.TieBreak)
	}
	if cfg.CheckMatching != matcher.CheckStrategyExhaustive {
		t.Errorf("check strategy = %s, want exhaustive", cfg.CheckMatching)
	}

	want := []int{matcher.CodeNone, matcher.CodeStanding}
	got := cfg.OverwritableFor(matcher.CodeTransfer)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("transfer overwrite set = %v, want %v", got, want)
	}
}

func TestCreateMatchingConfigInvalid(t *testing.T) {
	if _, err := CreateMatchingConfig("sometimes", "", false); err == nil {
		t.Error("expected invalid tie-break policy to be rejected")
	}
	if _, err := CreateMatchingConfig("", "optimal", false); err == nil {
		t.Error("expected invalid check strategy to be rejected")
	}
}

func TestCreateReportConfig(t *testing.T) {
	if cfg := CreateReportConfig(""); cfg.Format != reporter.FormatConsole {
		t.Errorf("format = %s, want console", cfg.Format)
	}
	if cfg := CreateReportConfig("JSON"); cfg.Format != reporter.FormatJSON {
		t.Errorf("format = %s, want json", cfg.Format)
	}
}
