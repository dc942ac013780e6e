package matcher

import (
	"bank-reconciliation-engine/internal/fields"
	"bank-reconciliation-engine/internal/normalize"
)

// ovrcRule is rule 1: customer receipts. A bank debit on an OV/RC
// operation code is paired with the books credit of the same absolute
// amount on the same balance date, but only when the key identifies both
// sides uniquely; a key shared by several candidates on either side is
// ambiguous and, under the strict policy, explained by no one.
type ovrcRule struct{}

func newOVRCRule() Rule { return &ovrcRule{} }

func (r *ovrcRule) Name() string { return "ovrc_receipts" }
func (r *ovrcRule) Code() int    { return CodeOVRC }

func (r *ovrcRule) Apply(s *Sheet, cfg *Config, _ *Env) RuleReport {
	required := []fields.Field{
		fields.BankCode, fields.BankAmount, fields.BooksAmount,
		fields.Reference1, fields.Date,
	}
	if missing := s.Columns.Missing(required...); len(missing) > 0 {
		return notApplicable(r.Name(), r.Code(), missing)
	}

	report := RuleReport{Rule: r.Name(), Code: r.Code(), Applied: true}
	overwritable := cfg.OverwritableFor(r.Code())

	bankKeys := make(keyIndex)
	booksKeys := make(keyIndex)

	for i := 0; i < s.Len(); i++ {
		if !s.candidate(i, overwritable) {
			continue
		}

		if s.bankCodeOK[i] && containsInt(cfg.OVRCCodes, s.bankCode[i]) &&
			s.bankAmtOK[i] && s.bankAmt[i].IsNegative() && s.dateOK[i] {
			bankKeys.add(newPairKey(s, i, true), i)
		}
	}

	for j := 0; j < s.Len(); j++ {
		if !s.candidate(j, overwritable) {
			continue
		}

		if s.booksAmtOK[j] && s.booksAmt[j].IsPositive() && s.dateOK[j] &&
			normalize.StartsWithAny(s.ref1[j], cfg.OVRCPrefixes...) {
			booksKeys.add(newPairKey(s, j, false), j)
		}
	}

	for _, key := range bankKeys.sortedKeys() {
		bank := bankKeys[key]
		books := booksKeys[key]
		if len(books) == 0 {
			continue
		}

		switch cfg.TieBreak {
		case TieBreakNearest:
			report.Pairs += r.pairNearest(s, bank, books, overwritable)
		default:
			if len(bank) != 1 || len(books) != 1 {
				report.AmbiguousKeys++
				continue
			}
			report.Pairs += r.pair(s, bank[0], books[0], overwritable)
		}
	}

	report.Tagged = report.Pairs * 2
	return report
}

// pair assigns the code to both sides atomically: either both rows are
// still candidates and both are tagged, or neither is.
func (r *ovrcRule) pair(s *Sheet, i, j int, overwritable []int) int {
	if !s.candidate(i, overwritable) || !s.candidate(j, overwritable) {
		return 0
	}
	s.assign(i, CodeOVRC, overwritable)
	s.assign(j, CodeOVRC, overwritable)
	return 1
}

// pairNearest resolves an ambiguous key by pairing each bank candidate
// with the closest unused books candidate by row distance.
func (r *ovrcRule) pairNearest(s *Sheet, bank, books []int, overwritable []int) int {
	used := make(map[int]bool, len(books))
	pairs := 0

	for _, i := range bank {
		best := -1
		bestDist := 0
		for _, j := range books {
			if used[j] {
				continue
			}
			dist := i - j
			if dist < 0 {
				dist = -dist
			}
			if best == -1 || dist < bestDist {
				best = j
				bestDist = dist
			}
		}
		if best == -1 {
			break
		}
		used[best] = true
		pairs += r.pair(s, i, best, overwritable)
	}

	return pairs
}
