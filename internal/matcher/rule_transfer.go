package matcher

import (
	"strings"

	"bank-reconciliation-engine/internal/fields"
)

// transferRule is rule 3: batched transfers. The auxiliary file is
// aggregated into event groups (date, optional time); a bank credit on
// the transfer code whose amount equals a group's total is explained by
// that group, and so is every books row whose reference appears in the
// group's payment-id set.
//
// Books-side tagging follows the group, not the bank row: when a group's
// total matches no bank row the books rows still stay untagged, but a
// matched bank row with no referenced books rows is tagged alone. This is
// the documented partial-tagging exception to pair atomicity.
type transferRule struct{}

func newTransferRule() Rule { return &transferRule{} }

func (r *transferRule) Name() string { return "transfers" }
func (r *transferRule) Code() int    { return CodeTransfer }

func (r *transferRule) Apply(s *Sheet, cfg *Config, env *Env) RuleReport {
	if env == nil || env.Events == nil {
		return RuleReport{Rule: r.Name(), Code: r.Code(), Reason: "no auxiliary records"}
	}

	required := []fields.Field{
		fields.BankCode, fields.BankAmount, fields.Details, fields.Date,
	}
	if missing := s.Columns.Missing(required...); len(missing) > 0 {
		return notApplicable(r.Name(), r.Code(), missing)
	}

	report := RuleReport{Rule: r.Name(), Code: r.Code(), Applied: true}
	overwritable := cfg.OverwritableFor(r.Code())
	hasRef := s.Columns.Has(fields.Reference1)

	for _, group := range env.Events.Groups {
		matchedBank := false

		for i := 0; i < s.Len(); i++ {
			if !s.candidate(i, overwritable) {
				continue
			}
			if !s.bankCodeOK[i] || s.bankCode[i] != cfg.TransferCode {
				continue
			}
			if !s.bankAmtOK[i] || !s.bankAmt[i].IsPositive() {
				continue
			}
			if !containsPhrase(s.details[i], cfg.TransferPhrase) {
				continue
			}
			if !s.dateOK[i] || !s.date[i].Equal(group.Date) {
				continue
			}
			if s.bankAmt[i].Abs().Sub(group.Total).Abs().GreaterThan(cfg.TransferTolerance) {
				continue
			}

			if s.assign(i, CodeTransfer, overwritable) {
				report.Tagged++
				matchedBank = true
			}
		}

		if !matchedBank || !hasRef || len(group.PaymentIDs) == 0 {
			continue
		}

		books := 0
		for j := 0; j < s.Len(); j++ {
			if !s.candidate(j, overwritable) {
				continue
			}
			if !group.HasPayment(strings.TrimSpace(s.ref1[j])) {
				continue
			}
			if s.assign(j, CodeTransfer, overwritable) {
				report.Tagged++
				books++
			}
		}

		if matchedBank && books > 0 {
			report.Pairs++
		}
	}

	return report
}
