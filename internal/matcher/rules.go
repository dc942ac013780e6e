package matcher

import (
	"strings"

	"bank-reconciliation-engine/internal/events"
	"bank-reconciliation-engine/internal/fields"
)

// Rule is one classification rule of the catalogue. Rules are pure over
// the sheet series except for match-code assignment, and each decides its
// own applicability from the resolved columns.
type Rule interface {
	// Name identifies the rule in reports.
	Name() string

	// Code is the match code the rule assigns.
	Code() int

	// Apply runs the rule over the sheet, honoring the overwrite policy
	// from the configuration.
	Apply(s *Sheet, cfg *Config, env *Env) RuleReport
}

// Env carries the optional external inputs a rule may need.
type Env struct {
	// Events is the aggregated auxiliary transfer index, nil when no
	// auxiliary file was supplied.
	Events *events.Index
}

// RuleReport records what one rule did on one sheet.
type RuleReport struct {
	Rule    string `json:"rule"`
	Code    int    `json:"code"`
	Applied bool   `json:"applied"`
	// Reason explains why the rule did not apply.
	Reason string `json:"reason,omitempty"`
	// Tagged counts rows assigned the rule's code, both sides included.
	Tagged int `json:"tagged"`
	// Pairs counts completed bank/books pairings (rules 1 and 4).
	Pairs int `json:"pairs,omitempty"`
	// AmbiguousKeys counts pairing keys skipped under the strict
	// tie-break policy (rule 1).
	AmbiguousKeys int `json:"ambiguous_keys,omitempty"`
}

func notApplicable(name string, code int, missing []fields.Field) RuleReport {
	names := make([]string, len(missing))
	for i, f := range missing {
		names[i] = string(f)
	}
	return RuleReport{
		Rule:   name,
		Code:   code,
		Reason: "missing columns: " + strings.Join(names, ", "),
	}
}

// containsPhrase reports substring containment after trimming; phrase tests
// in the catalogue are case-sensitive in the original data but tolerate
// surrounding whitespace.
func containsPhrase(text, phrase string) bool {
	return phrase != "" && strings.Contains(strings.TrimSpace(text), phrase)
}

// equalsPhrase is the exact-phrase test of rules 7-9.
func equalsPhrase(text, phrase string) bool {
	return strings.TrimSpace(text) == phrase
}

// tagRule is the shape of the bank-only rules: a predicate over one row,
// a set of required columns, and a code to assign. Rules 2 and 5-10 are
// instances of this.
type tagRule struct {
	name     string
	code     int
	requires []fields.Field
	match    func(s *Sheet, i int, cfg *Config) bool
}

func (r *tagRule) Name() string { return r.name }
func (r *tagRule) Code() int    { return r.code }

func (r *tagRule) Apply(s *Sheet, cfg *Config, _ *Env) RuleReport {
	if missing := s.Columns.Missing(r.requires...); len(missing) > 0 {
		return notApplicable(r.name, r.code, missing)
	}

	report := RuleReport{Rule: r.name, Code: r.code, Applied: true}
	overwritable := cfg.OverwritableFor(r.code)

	for i := 0; i < s.Len(); i++ {
		if !s.candidate(i, overwritable) {
			continue
		}
		if !r.match(s, i, cfg) {
			continue
		}
		if s.assign(i, r.code, overwritable) {
			report.Tagged++
		}
	}

	return report
}

// passThroughRule reserves a match code without assigning it. Codes 11 and
// 12 stay in the catalogue so that adding their logic later changes no
// engine wiring.
type passThroughRule struct {
	name string
	code int
}

func (r *passThroughRule) Name() string { return r.name }
func (r *passThroughRule) Code() int    { return r.code }

func (r *passThroughRule) Apply(_ *Sheet, _ *Config, _ *Env) RuleReport {
	return RuleReport{Rule: r.name, Code: r.code, Applied: true, Reason: "reserved pass-through"}
}

// newStandingOrderRule builds rule 2: every bank row on a standing-order
// code is tagged independently and later feeds the supplier enrichment.
func newStandingOrderRule() Rule {
	return &tagRule{
		name:     "standing_orders",
		code:     CodeStanding,
		requires: []fields.Field{fields.BankCode},
		match: func(s *Sheet, i int, cfg *Config) bool {
			return s.bankCodeOK[i] && containsInt(cfg.StandingCodes, s.bankCode[i])
		},
	}
}

// newFeeRule builds rule 5: small positive amounts on fee codes.
func newFeeRule() Rule {
	return &tagRule{
		name:     "fees",
		code:     CodeFee,
		requires: []fields.Field{fields.BankCode, fields.BankAmount},
		match: func(s *Sheet, i int, cfg *Config) bool {
			if !s.bankCodeOK[i] || !containsInt(cfg.FeeCodes, s.bankCode[i]) {
				return false
			}
			if !s.bankAmtOK[i] {
				return false
			}
			return s.bankAmt[i].IsPositive() && s.bankAmt[i].LessThanOrEqual(cfg.FeeCap)
		},
	}
}

// newProcessorRule builds rule 6: payment-processor debits, recognized by
// the company name appearing in the details.
func newProcessorRule() Rule {
	return &tagRule{
		name:     "payment_processor",
		code:     CodeProcessor,
		requires: []fields.Field{fields.BankCode, fields.BankAmount, fields.Details},
		match: func(s *Sheet, i int, cfg *Config) bool {
			return s.bankCodeOK[i] && s.bankCode[i] == cfg.ProcessorCode &&
				s.bankAmtOK[i] && s.bankAmt[i].IsNegative() &&
				containsPhrase(s.details[i], cfg.ProcessorCompany)
		},
	}
}

// newPhraseRule builds the exact-phrase deposit rules 7-9.
func newPhraseRule(name string, code int, bankCode func(*Config) int, phrase func(*Config) string) Rule {
	return &tagRule{
		name:     name,
		code:     code,
		requires: []fields.Field{fields.BankCode, fields.BankAmount, fields.Details},
		match: func(s *Sheet, i int, cfg *Config) bool {
			return s.bankCodeOK[i] && s.bankCode[i] == bankCode(cfg) &&
				s.bankAmtOK[i] && s.bankAmt[i].IsNegative() &&
				equalsPhrase(s.details[i], phrase(cfg))
		},
	}
}

// newMiscRule builds rule 10: any non-zero amount on the residual codes.
func newMiscRule() Rule {
	return &tagRule{
		name:     "misc_codes",
		code:     CodeMisc,
		requires: []fields.Field{fields.BankCode, fields.BankAmount},
		match: func(s *Sheet, i int, cfg *Config) bool {
			return s.bankCodeOK[i] && containsInt(cfg.MiscCodes, s.bankCode[i]) &&
				s.bankAmtOK[i] && !s.bankAmt[i].IsZero()
		},
	}
}
