// Package fields resolves the logical columns of a reconciliation
// worksheet from its literal header texts.
//
// The same logical field appears under many header spellings across
// exported workbooks, including right-to-left variants, so resolution is
// data-driven: each logical field carries an ordered candidate list, tried
// first by exact match and then by substring containment. New spellings
// are added to the synonym tables, never to code.
package fields

import "strings"

// Field names a logical worksheet column the engine cares about.
type Field string

const (
	MatchCode   Field = "match_code"
	BankCode    Field = "bank_code"
	BankAmount  Field = "bank_amount"
	BooksAmount Field = "books_amount"
	Reference1  Field = "reference_1"
	Reference2  Field = "reference_2"
	Date        Field = "date"
	Details     Field = "details"

	// Auxiliary transfer-file columns.
	EventDate Field = "event_date"
	EventTime Field = "event_time"
	NetAmount Field = "net_amount"
	PaymentID Field = "payment_id"
)

// Synonyms is an ordered candidate list per logical field. Order matters:
// earlier candidates win, and exact matches beat containment matches
// across the whole list.
type Synonyms map[Field][]string

// DefaultSynonyms covers the header spellings observed in the source
// worksheets plus their English export variants.
func DefaultSynonyms() Synonyms {
	return Synonyms{
		MatchCode:   {"מס.התאמה", "מס. התאמה", "מס התאמה", "מספר התאמה", "התאמה", "Match Code"},
		BankCode:    {"קוד פעולת בנק", "קוד פעולה", "קוד פעולת", "Bank Code"},
		BankAmount:  {"סכום בדף", "סכום דף", "סכום בבנק", "סכום תנועת בנק", "Bank Amount"},
		BooksAmount: {"סכום בספרים", "סכום בספר", "סכום ספרים", "Books Amount"},
		Reference1:  {"אסמכתא 1", "אסמכתא1", "אסמכתא", "אסמכתה", "Ref1"},
		Reference2:  {"אסמכתא 2", "אסמכתא2", "אסמכתא-2", "אסמכתה 2", "Ref2"},
		Date:        {"תאריך מאזן", "תאריך ערך", "תאריך", "Date"},
		Details:     {"פרטים", "תיאור", "שם ספק", "Details", "תאור"},
	}
}

// AuxSynonyms covers the auxiliary transfer-file headers.
func AuxSynonyms() Synonyms {
	return Synonyms{
		EventDate: {"תאריך פריקה", "תאריך", "פריקה", "Event Date"},
		EventTime: {"שעת פריקה", "שעה", "Event Time"},
		NetAmount: {"אחרי ניכוי", "אחרי", "סכום", "Net Amount"},
		PaymentID: {"מס' תשלום", "מס תשלום", "מספר תשלום", "Payment"},
	}
}

// Resolve finds the actual header for an ordered candidate list. Exact
// membership is preferred; when no candidate matches exactly, the first
// candidate contained anywhere inside an actual header wins. Returns
// ("", false) when nothing resolves; callers treat that as "rule not
// applicable", not as an error.
func Resolve(headers []string, candidates []string) (string, bool) {
	for _, want := range candidates {
		for _, h := range headers {
			if h == want {
				return h, true
			}
		}
	}

	for _, want := range candidates {
		for _, h := range headers {
			if want != "" && strings.Contains(h, want) {
				return h, true
			}
		}
	}

	return "", false
}

// Columns maps each resolved logical field to its actual header.
// Unresolved fields are absent from the map.
type Columns map[Field]string

// ResolveAll resolves every field of a synonym table against the headers.
func ResolveAll(headers []string, synonyms Synonyms) Columns {
	cols := make(Columns, len(synonyms))
	for field, candidates := range synonyms {
		if name, ok := Resolve(headers, candidates); ok {
			cols[field] = name
		}
	}
	return cols
}

// Get returns the actual header for a field, or "" when unresolved.
func (c Columns) Get(field Field) string {
	return c[field]
}

// Has reports whether every listed field resolved.
func (c Columns) Has(fields ...Field) bool {
	for _, f := range fields {
		if _, ok := c[f]; !ok {
			return false
		}
	}
	return true
}

// Missing returns the fields from the list that did not resolve.
func (c Columns) Missing(fields ...Field) []Field {
	var missing []Field
	for _, f := range fields {
		if _, ok := c[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}
