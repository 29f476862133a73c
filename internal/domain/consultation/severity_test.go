package consultation

import "testing"

func TestNormalizeSeverity(t *testing.T) {
	cases := []struct {
		raw      string
		want     Severity
		valid    bool
		positive bool
	}{
		{raw: " Severe ", want: SeveritySevere, valid: true, positive: true},
		{raw: "MILD", want: SeverityMild, valid: true, positive: true},
		{raw: "none", want: SeverityNone, valid: true},
		{raw: "  ", want: "", valid: false},
		{raw: "sometimes", want: "sometimes", valid: false},
	}
	for _, tc := range cases {
		got := NormalizeSeverity(tc.raw)
		if got != tc.want {
			t.Fatalf("NormalizeSeverity(%q): want=%q got=%q", tc.raw, tc.want, got)
		}
		if got.Valid() != tc.valid {
			t.Fatalf("Valid(%q): want=%v got=%v", got, tc.valid, got.Valid())
		}
		if got.Positive() != tc.positive {
			t.Fatalf("Positive(%q): want=%v got=%v", got, tc.positive, got.Positive())
		}
	}
}
