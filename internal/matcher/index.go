package matcher

import (
	"sort"

	"bank-reconciliation-engine/internal/normalize"
)

// pairKey is the composite pairing key of rule 1: absolute amount rounded
// to two decimals plus the calendar date.
type pairKey struct {
	Amount string
	Date   string
}

func newPairKey(s *Sheet, i int, bankSide bool) pairKey {
	amt := s.booksAmt[i]
	if bankSide {
		amt = s.bankAmt[i]
	}
	return pairKey{
		Amount: normalize.AmountKey(amt),
		Date:   normalize.DateKey(s.date[i]),
	}
}

// keyIndex collects candidate row indexes per pairing key, preserving row
// order within each key.
type keyIndex map[pairKey][]int

func (idx keyIndex) add(key pairKey, row int) {
	idx[key] = append(idx[key], row)
}

// sortedKeys returns the keys in deterministic order so that rule output
// never depends on map iteration.
func (idx keyIndex) sortedKeys() []pairKey {
	keys := make([]pairKey, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date < keys[j].Date
		}
		return keys[i].Amount < keys[j].Amount
	})
	return keys
}

// refIndex maps a normalized reference id to the books-side candidate rows
// carrying it, in row order. Built once per sheet by rule 4.
type refIndex map[string][]int

// buildBooksRefIndex indexes the books-side check candidates by their
// normalized reference id. The id comes from reference 2 when it carries
// digits, otherwise from reference 1 with the check prefix stripped.
func buildBooksRefIndex(s *Sheet, cfg *Config, overwritable []int) refIndex {
	idx := make(refIndex)

	for i := 0; i < s.Len(); i++ {
		if !s.candidate(i, overwritable) {
			continue
		}
		if !s.booksAmtOK[i] || !s.booksAmt[i].IsNegative() {
			continue
		}
		if !normalize.StartsWithAny(s.ref1[i], cfg.CheckRefPrefix) {
			continue
		}
		if !containsPhrase(s.details[i], cfg.CheckPaymentPhrase) {
			continue
		}

		id := booksCheckID(s, i, cfg)
		if id == "0" {
			continue
		}
		idx[id] = append(idx[id], i)
	}

	return idx
}

// booksCheckID normalizes the books-side check reference.
func booksCheckID(s *Sheet, i int, cfg *Config) string {
	if normalize.HasDigits(s.ref2[i]) {
		return normalize.Reference(s.ref2[i])
	}
	return normalize.ReferenceStripPrefix(s.ref1[i], cfg.CheckRefPrefix)
}
