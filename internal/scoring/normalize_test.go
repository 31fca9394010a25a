package scoring

import (
	"encoding/json"
	"testing"
)

func TestNormalizeCoercions(t *testing.T) {
	n := NewNormalizer()

	cleaned := n.Normalize(map[string]interface{}{
		"q58":  "5",
		"q61":  3.0,
		"q82":  float64(1.4),
		"q52":  json.Number("2"),
		"q63":  true,
		"q19":  "  7 ",
		"q55":  "not a number",
		"q44":  nil,
		"  ":   4,
		"q103": 99,
	})

	cases := []struct {
		code string
		want int
	}{
		{"q58", 5},
		{"q61", 3},
		{"q82", 1},
		{"q52", 2},
		{"q63", 1},
		{"q19", 7},
	}
	for _, tc := range cases {
		got, ok := cleaned.Get(tc.code)
		if !ok {
			t.Fatalf("%s: expected an answer", tc.code)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.code, tc.want, got)
		}
	}

	for _, code := range []string{"q55", "q44", "q103"} {
		if _, ok := cleaned.Get(code); ok {
			t.Fatalf("%s: should be treated as unanswered", code)
		}
		if _, present := cleaned[code]; !present {
			t.Fatalf("%s: unanswered codes are kept as nil entries", code)
		}
	}
	if _, present := cleaned["  "]; present {
		t.Fatalf("blank codes must be dropped")
	}
}

func TestNormalizeDeclinedSentinel(t *testing.T) {
	n := NewNormalizer()

	cleaned := n.Normalize(map[string]interface{}{"q82": 99, "q61": "99"})
	for _, code := range []string{"q82", "q61"} {
		if _, ok := cleaned.Get(code); ok {
			t.Fatalf("%s: declined answers must become nil", code)
		}
	}
}

func TestModelVectorImputesDefaults(t *testing.T) {
	n := NewNormalizer()

	names := []string{"q58", "q58_missing", "q89", "q89_missing", "q104", "q47"}
	vector := n.ModelVector(map[string]interface{}{"q58": 5}, names)

	if vector["q58"] != 5 {
		t.Fatalf("answered feature should pass through, got %v", vector["q58"])
	}
	if vector["q58_missing"] != 0 {
		t.Fatalf("answered feature should clear its missing indicator")
	}
	if vector["q89"] != 1 {
		t.Fatalf("q89 should impute its per-feature default 1, got %v", vector["q89"])
	}
	if vector["q89_missing"] != 1 {
		t.Fatalf("imputed feature should set its missing indicator")
	}
	if vector["q104"] != 5 {
		t.Fatalf("q104 should impute 5, got %v", vector["q104"])
	}
	if vector["q47"] != 2 {
		t.Fatalf("unlisted features should take the global default 2, got %v", vector["q47"])
	}
}

func TestModelVectorDeclinedCountsAsMissing(t *testing.T) {
	n := NewNormalizer()

	vector := n.ModelVector(map[string]interface{}{"q82": 99}, []string{"q82", "q82_missing"})
	if vector["q82"] != 2 {
		t.Fatalf("declined q82 should impute its default 2, got %v", vector["q82"])
	}
	if vector["q82_missing"] != 1 {
		t.Fatalf("declined answers count as missing")
	}
}

func TestCoerceIntRounding(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int
		ok   bool
	}{
		{3.5, 4, true},
		{2.4, 2, true},
		{"2.6", 3, true},
		{int64(7), 7, true},
		{false, 0, true},
		{"", 0, false},
		{[]int{1}, 0, false},
	}
	for _, tc := range cases {
		got, ok := coerceInt(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("coerceInt(%v): expected (%d,%v), got (%d,%v)", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}
