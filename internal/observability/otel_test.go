package observability

import "testing"

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" x-api-key=abc , broken, =nokey, tenant = blue ")
	if len(got) != 2 || got["x-api-key"] != "abc" || got["tenant"] != "blue" {
		t.Fatalf("ParseHeaders: unexpected result: %v", got)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("ParseHeaders(empty): want nil")
	}
}

func TestClampRatio(t *testing.T) {
	cases := map[float64]float64{0: 0.1, -1: 0.1, 0.5: 0.5, 3: 1}
	for in, want := range cases {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v): want=%v got=%v", in, want, got)
		}
	}
}
