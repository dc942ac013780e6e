package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain integer", "100", "100", true},
		{"decimal", "123.45", "123.45", true},
		{"negative", "-17.5", "-17.5", true},
		{"thousands separators", "1,234,567.89", "1234567.89", true},
		{"shekel sign", "₪250.00", "250", true},
		{"dollar sign", "$99.90", "99.9", true},
		{"bidi marks", "‏1,500‎", "1500", true},
		{"nbsp padding", " 750 ", "750", true},
		{"parentheses negative", "(320.10)", "-320.1", true},
		{"surrounding spaces", "  42  ", "42", true},
		{"empty", "", "0", false},
		{"whitespace only", "   ", "0", false},
		{"text", "שיק", "0", false},
		{"mixed", "12ab", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Number(tt.input)
			if ok != tt.ok {
				t.Fatalf("Number(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got.String() != tt.want {
				t.Errorf("Number(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"175", 175, true},
		{"175.0", 175, true},
		{"493.00", 493, true},
		{"-120", -120, true},
		{"175.5", 0, false},
		{"", 0, false},
		{"code", 0, false},
	}

	for _, tt := range tests {
		got, ok := Int(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Int(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAmountKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1250", "1250.00"},
		{"-1250", "1250.00"},
		{"99.999", "100.00"},
		{"0.005", "0.01"},
		{"0", "0.00"},
	}

	for _, tt := range tests {
		d, _ := decimal.NewFromString(tt.input)
		if got := AmountKey(d); got != tt.want {
			t.Errorf("AmountKey(%s) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"day first slash", "15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"day first with time", "15/03/2024 14:30:00", time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC), true},
		{"single digit day", "5/3/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"dashes", "15-03-2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"dots", "15.03.2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"iso", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"excel serial", "45000", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "not a date", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Timestamp(tt.input)
			if ok != tt.ok {
				t.Fatalf("Timestamp(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Timestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDateTruncatesTime(t *testing.T) {
	got, ok := Date("15/03/2024 14:30:00")
	if !ok {
		t.Fatal("expected date to parse")
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Date = %v, want %v", got, want)
	}
}

func TestDateKey(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if got := DateKey(d); got != "2024-03-05" {
		t.Errorf("DateKey = %s, want 2024-03-05", got)
	}
}

func TestReference(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"99", "99"},
		{"0099", "99"},
		{"CH0099", "99"},
		{"ab12cd34", "1234"},
		{"", "0"},
		{"0000", "0"},
		{"no digits", "0"},
	}

	for _, tt := range tests {
		if got := Reference(tt.input); got != tt.want {
			t.Errorf("Reference(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestReferenceStripPrefix(t *testing.T) {
	tests := []struct {
		input  string
		prefix string
		want   string
	}{
		{"CH0042", "CH", "42"},
		{"ch0042", "CH", "42"},
		{" CH7 ", "CH", "7"},
		{"0042", "CH", "42"},
		{"CH", "CH", "0"},
	}

	for _, tt := range tests {
		if got := ReferenceStripPrefix(tt.input, tt.prefix); got != tt.want {
			t.Errorf("ReferenceStripPrefix(%q, %q) = %s, want %s", tt.input, tt.prefix, got, tt.want)
		}
	}
}

func TestHasDigits(t *testing.T) {
	if !HasDigits("CH12") {
		t.Error("expected CH12 to have digits")
	}
	if HasDigits("CHxx") {
		t.Error("expected CHxx to have no digits")
	}
}

func TestStartsWithAny(t *testing.T) {
	if !StartsWithAny(" ov1234", "OV", "RC") {
		t.Error("expected ov1234 to match the OV prefix")
	}
	if !StartsWithAny("RC-77", "OV", "RC") {
		t.Error("expected RC-77 to match the RC prefix")
	}
	if StartsWithAny("CH99", "OV", "RC") {
		t.Error("expected CH99 to match nothing")
	}
}
