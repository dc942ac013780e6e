package matcher

import (
	"bank-reconciliation-engine/internal/fields"
	"bank-reconciliation-engine/internal/normalize"
)

// checksRule is rule 4: supplier checks. A bank credit on the check code
// is paired with a books debit carrying the same normalized check number,
// provided the two amounts nearly cancel. The books-side number comes
// from reference 2, falling back to reference 1 with the check prefix
// stripped when reference 2 carries no digits.
//
// The default strategy consumes the first unused books candidate in
// encounter order; the exhaustive strategy computes a maximum matching
// over the eligible pairs instead.
type checksRule struct{}

func newChecksRule() Rule { return &checksRule{} }

func (r *checksRule) Name() string { return "supplier_checks" }
func (r *checksRule) Code() int    { return CodeCheck }

func (r *checksRule) Apply(s *Sheet, cfg *Config, _ *Env) RuleReport {
	required := []fields.Field{
		fields.BankCode, fields.BankAmount, fields.BooksAmount,
		fields.Reference1, fields.Details,
	}
	if missing := s.Columns.Missing(required...); len(missing) > 0 {
		return notApplicable(r.Name(), r.Code(), missing)
	}

	report := RuleReport{Rule: r.Name(), Code: r.Code(), Applied: true}
	overwritable := cfg.OverwritableFor(r.Code())

	books := buildBooksRefIndex(s, cfg, overwritable)
	if len(books) == 0 {
		return report
	}

	var bank []int
	for i := 0; i < s.Len(); i++ {
		if !s.candidate(i, overwritable) {
			continue
		}
		if !s.bankCodeOK[i] || s.bankCode[i] != cfg.CheckCode {
			continue
		}
		if !s.bankAmtOK[i] || !s.bankAmt[i].IsPositive() {
			continue
		}
		if !containsPhrase(s.details[i], cfg.CheckWord) {
			continue
		}
		bank = append(bank, i)
	}

	var pairs [][2]int
	if cfg.CheckMatching == CheckStrategyExhaustive {
		pairs = r.matchExhaustive(s, cfg, bank, books)
	} else {
		pairs = r.matchGreedy(s, cfg, bank, books)
	}

	for _, p := range pairs {
		i, j := p[0], p[1]
		if !s.candidate(i, overwritable) || !s.candidate(j, overwritable) {
			continue
		}
		s.assign(i, CodeCheck, overwritable)
		s.assign(j, CodeCheck, overwritable)
		report.Pairs++
	}

	report.Tagged = report.Pairs * 2
	return report
}

// amountsCancel checks the rule's tolerance: the two signed amounts must
// sum to nearly zero.
func amountsCancel(s *Sheet, i, j int, cfg *Config) bool {
	return s.bankAmt[i].Add(s.booksAmt[j]).Abs().LessThanOrEqual(cfg.CheckTolerance)
}

// matchGreedy takes, for each bank row in encounter order, the first
// unused books row with the same normalized id and a cancelling amount.
func (r *checksRule) matchGreedy(s *Sheet, cfg *Config, bank []int, books refIndex) [][2]int {
	used := make(map[int]bool)
	var pairs [][2]int

	for _, i := range bank {
		id := normalize.Reference(s.ref1[i])
		if id == "0" {
			continue
		}

		for _, j := range books[id] {
			if used[j] {
				continue
			}
			if !amountsCancel(s, i, j, cfg) {
				continue
			}
			used[j] = true
			pairs = append(pairs, [2]int{i, j})
			break
		}
	}

	return pairs
}

// matchExhaustive computes a maximum bipartite matching over the eligible
// (bank, books) pairs using augmenting paths.
func (r *checksRule) matchExhaustive(s *Sheet, cfg *Config, bank []int, books refIndex) [][2]int {
	eligible := make([][]int, len(bank))
	for bi, i := range bank {
		id := normalize.Reference(s.ref1[i])
		if id == "0" {
			continue
		}
		for _, j := range books[id] {
			if amountsCancel(s, i, j, cfg) {
				eligible[bi] = append(eligible[bi], j)
			}
		}
	}

	// matchOf maps a books row to the bank position currently claiming it.
	matchOf := make(map[int]int)

	var augment func(bi int, visited map[int]bool) bool
	augment = func(bi int, visited map[int]bool) bool {
		for _, j := range eligible[bi] {
			if visited[j] {
				continue
			}
			visited[j] = true
			prev, taken := matchOf[j]
			if !taken || augment(prev, visited) {
				matchOf[j] = bi
				return true
			}
		}
		return false
	}

	for bi := range bank {
		augment(bi, make(map[int]bool))
	}

	pairs := make([][2]int, 0, len(matchOf))
	for j, bi := range matchOf {
		pairs = append(pairs, [2]int{bank[bi], j})
	}

	// Deterministic output order by bank row.
	for a := 1; a < len(pairs); a++ {
		for b := a; b > 0 && pairs[b][0] < pairs[b-1][0]; b-- {
			pairs[b], pairs[b-1] = pairs[b-1], pairs[b]
		}
	}

	return pairs
}
