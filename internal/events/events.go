// Package events aggregates the auxiliary transfer file into event groups
// used by the transfer matching rule.
//
// Auxiliary records are grouped by unloading date (plus time when one is
// available), their net amounts summed, and their payment identifiers
// unioned. A transfer on the bank side is explained when its amount equals
// a group's total; the group's payment identifiers then explain the books
// side.
package events

import (
	"sort"
	"strings"
	"time"

	"bank-reconciliation-engine/internal/fields"
	"bank-reconciliation-engine/internal/models"
	"bank-reconciliation-engine/internal/normalize"
	"bank-reconciliation-engine/pkg/logger"

	"github.com/shopspring/decimal"
)

// Group is one aggregated transfer event.
type Group struct {
	Date time.Time
	// Time is the optional time-of-day component of the group key, in
	// "15:04:05" form, or "" when grouping by date alone.
	Time string
	// Total is the absolute value of the signed sum of net amounts,
	// rounded to two decimals, so mixed-sign records net out before the
	// sign is dropped.
	Total decimal.Decimal
	// PaymentIDs is the union of payment identifiers in the group.
	PaymentIDs map[string]bool
	// Records counts the auxiliary rows aggregated into the group.
	Records int
}

// Key returns the canonical group key.
func (g *Group) Key() string {
	if g.Time != "" {
		return normalize.DateKey(g.Date) + "T" + g.Time
	}
	return normalize.DateKey(g.Date)
}

// HasPayment reports whether the payment id belongs to the group.
func (g *Group) HasPayment(id string) bool {
	return g.PaymentIDs[strings.TrimSpace(id)]
}

// Index holds the aggregated event groups plus the reverse amount index.
type Index struct {
	// Groups is the diagnostic grouped table, ordered by group key.
	Groups []*Group

	byDate   map[string][]*Group
	byAmount map[string]map[string]bool
}

// Build aggregates an auxiliary record table. Column meaning is resolved
// through the auxiliary synonym table; a table whose date or amount column
// cannot be resolved yields ok=false, which callers surface as "transfer
// rule not applicable" rather than an error.
func Build(table *models.Table) (*Index, bool) {
	if table == nil || table.Len() == 0 {
		return nil, false
	}

	cols := fields.ResolveAll(table.Headers, fields.AuxSynonyms())
	if !cols.Has(fields.EventDate, fields.NetAmount) {
		logger.GetGlobalLogger().WithComponent("events").WithFields(logger.Fields{
			"sheet":   table.Sheet,
			"missing": cols.Missing(fields.EventDate, fields.NetAmount),
		}).Warn("Auxiliary table missing required columns")
		return nil, false
	}

	dateCol := cols.Get(fields.EventDate)
	amountCol := cols.Get(fields.NetAmount)
	timeCol := cols.Get(fields.EventTime)
	payCol := cols.Get(fields.PaymentID)

	groups := make(map[string]*Group)

	for _, rec := range table.Records {
		ts, ok := normalize.Timestamp(rec.Get(dateCol))
		if !ok {
			continue
		}

		amount, ok := normalize.Number(rec.Get(amountCol))
		if !ok {
			continue
		}

		date := normalize.Truncate(ts)
		clock := eventClock(rec, timeCol, ts)

		key := normalize.DateKey(date)
		if clock != "" {
			key += "T" + clock
		}

		g, exists := groups[key]
		if !exists {
			g = &Group{
				Date:       date,
				Time:       clock,
				PaymentIDs: make(map[string]bool),
			}
			groups[key] = g
		}

		g.Total = g.Total.Add(amount)
		g.Records++

		if payCol != "" {
			if id := strings.TrimSpace(rec.Get(payCol)); id != "" {
				g.PaymentIDs[id] = true
			}
		}
	}

	if len(groups) == 0 {
		return nil, false
	}

	idx := &Index{
		byDate:   make(map[string][]*Group),
		byAmount: make(map[string]map[string]bool),
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		g := groups[k]
		g.Total = g.Total.Abs().Round(2)
		idx.Groups = append(idx.Groups, g)

		dk := normalize.DateKey(g.Date)
		idx.byDate[dk] = append(idx.byDate[dk], g)

		// Distinct events with equal totals collide deliberately: either
		// side of the worksheet benefits from the union of their ids.
		ak := normalize.AmountKey(g.Total)
		ids := idx.byAmount[ak]
		if ids == nil {
			ids = make(map[string]bool)
			idx.byAmount[ak] = ids
		}
		for id := range g.PaymentIDs {
			ids[id] = true
		}
	}

	return idx, true
}

// eventClock extracts the time component of the group key: the dedicated
// time column when resolved, otherwise a non-midnight time-of-day carried
// by the date cell itself.
func eventClock(rec *models.Record, timeCol string, ts time.Time) string {
	if timeCol != "" {
		if raw := strings.TrimSpace(rec.Get(timeCol)); raw != "" {
			return raw
		}
	}

	if ts.Hour() != 0 || ts.Minute() != 0 || ts.Second() != 0 {
		return ts.Format("15:04:05")
	}

	return ""
}

// GroupsFor returns the event groups on a calendar date.
func (idx *Index) GroupsFor(date time.Time) []*Group {
	return idx.byDate[normalize.DateKey(normalize.Truncate(date))]
}

// PaymentIDsForAmount returns the union of payment identifiers across all
// events whose total equals the amount, rounded to two decimals.
func (idx *Index) PaymentIDsForAmount(amount decimal.Decimal) map[string]bool {
	return idx.byAmount[normalize.AmountKey(amount)]
}

// Len returns the number of event groups.
func (idx *Index) Len() int {
	return len(idx.Groups)
}
