package pattern

import (
	"errors"
	"math/big"
	"strings"
	"testing"
)

func elementsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNumericRange(t *testing.T) {
	cases := []struct {
		raw   string
		want  []string
		fixed bool
	}{
		{"<1-5>", []string{"1", "2", "3", "4", "5"}, true},
		{"<0-10:5>", []string{"0", "5", "10"}, false},
		{"<001-003>", []string{"001", "002", "003"}, true},
		{"<08-11>", []string{"08", "09", "10", "11"}, true},
		{"<01-100:50>", []string{"001", "051"}, true},
		{"<7-7>", []string{"7"}, true},
		{"<1-10:3>", []string{"1", "4", "7", "10"}, false},
	}
	for _, tc := range cases {
		b, err := ParseBlock(tc.raw)
		if err != nil {
			t.Fatalf("ParseBlock(%q) failed: %v", tc.raw, err)
		}
		if !elementsEqual(b.Elements(), tc.want) {
			t.Errorf("Expected %v for %q, got %v", tc.want, tc.raw, b.Elements())
		}
		if !b.IsNumeric() || !b.IsRange() {
			t.Errorf("Expected %q to be a numeric range", tc.raw)
		}
		if b.IsFixed() != tc.fixed {
			t.Errorf("Expected fixed=%v for %q, got %v", tc.fixed, tc.raw, b.IsFixed())
		}
		if b.String() != tc.raw {
			t.Errorf("Expected String() %q, got %q", tc.raw, b.String())
		}
	}
}

func TestRangeCountProperty(t *testing.T) {
	for first := 0; first < 6; first++ {
		for last := first; last < 30; last += 7 {
			for step := 1; step < 5; step++ {
				raw := "<" + big.NewInt(int64(first)).String() + "-" + big.NewInt(int64(last)).String() +
					":" + big.NewInt(int64(step)).String() + ">"
				b, err := ParseBlock(raw)
				if err != nil {
					t.Fatalf("ParseBlock(%q) failed: %v", raw, err)
				}
				want := (last-first)/step + 1
				if b.Count() != want {
					t.Errorf("Expected %d elements for %q, got %d", want, raw, b.Count())
				}
				if b.First().Int64() != int64(first) || b.Last().Int64() != int64(last) || b.Step().Int64() != int64(step) {
					t.Errorf("Expected bounds %d-%d:%d for %q, got %v-%v:%v", first, last, step, raw, b.First(), b.Last(), b.Step())
				}
				prev := int64(-1)
				for i, e := range b.Elements() {
					v, _ := new(big.Int).SetString(e, 10)
					if i == 0 && v.Int64() != int64(first) {
						t.Errorf("Expected first element %d for %q, got %s", first, raw, e)
					}
					if i > 0 && v.Int64()-prev != int64(step) {
						t.Errorf("Expected step %d between elements of %q, got %d", step, raw, v.Int64()-prev)
					}
					prev = v.Int64()
				}
			}
		}
	}
}

func TestLargeRangeBounds(t *testing.T) {
	b, err := ParseBlock("<99999999999999999999-100000000000000000001>")
	if err != nil {
		t.Fatalf("ParseBlock failed: %v", err)
	}
	want := []string{"99999999999999999999", "100000000000000000000", "100000000000000000001"}
	if !elementsEqual(b.Elements(), want) {
		t.Errorf("Expected %v, got %v", want, b.Elements())
	}
}

func TestLetterRange(t *testing.T) {
	b, err := ParseBlock("<A-E:2>")
	if err != nil {
		t.Fatalf("ParseBlock failed: %v", err)
	}
	if want := []string{"A", "C", "E"}; !elementsEqual(b.Elements(), want) {
		t.Errorf("Expected %v, got %v", want, b.Elements())
	}
	if b.IsNumeric() || !b.IsFixed() {
		t.Errorf("Expected a fixed, non-numeric block")
	}
	if b.First().Int64() != 0 || b.Last().Int64() != 4 {
		t.Errorf("Expected ordinals 0-4, got %v-%v", b.First(), b.Last())
	}

	b, err = ParseBlock("<x-z>")
	if err != nil {
		t.Fatalf("ParseBlock failed: %v", err)
	}
	if want := []string{"x", "y", "z"}; !elementsEqual(b.Elements(), want) {
		t.Errorf("Expected %v, got %v", want, b.Elements())
	}
}

func TestLetterRangeHugeStep(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"<Z-Z:9223372036854775807>", []string{"Z"}},
		{"<A-Z:9223372036854775807>", []string{"A"}},
		{"<a-z:25>", []string{"a", "z"}},
		{"<a-z:26>", []string{"a"}},
		{"<b-d:99999999999999999999999>", []string{"b"}},
	}
	for _, tc := range cases {
		b, err := ParseBlock(tc.raw)
		if err != nil {
			t.Fatalf("ParseBlock(%q) failed: %v", tc.raw, err)
		}
		if !elementsEqual(b.Elements(), tc.want) || b.Count() != len(tc.want) {
			t.Errorf("Expected %v for %q, got %v", tc.want, tc.raw, b.Elements())
		}
	}
}

// TestNumericPaddingConvention pins the width rule: bounds of equal width or
// a zero-led lower bound pad, anything else is unpadded.
func TestNumericPaddingConvention(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"<8-10>", []string{"8", "9", "10"}},
		{"<08-10>", []string{"08", "09", "10"}},
		{"<10-12>", []string{"10", "11", "12"}},
	}
	for _, tc := range cases {
		b, err := ParseBlock(tc.raw)
		if err != nil {
			t.Fatalf("ParseBlock(%q) failed: %v", tc.raw, err)
		}
		if !elementsEqual(b.Elements(), tc.want) {
			t.Errorf("Expected %v for %q, got %v", tc.want, tc.raw, b.Elements())
		}
	}
}

func TestCommaList(t *testing.T) {
	b, err := ParseBlock("<R,G,B,G>")
	if err != nil {
		t.Fatalf("ParseBlock failed: %v", err)
	}
	if want := []string{"R", "G", "B", "G"}; !elementsEqual(b.Elements(), want) {
		t.Errorf("Expected duplicates and order preserved %v, got %v", want, b.Elements())
	}
	if b.First() != nil || b.Last() != nil || b.Step() != nil || b.IsRange() {
		t.Errorf("Expected nil bounds for a list")
	}
	if b.IsNumeric() {
		t.Errorf("Expected letter list to be non-numeric")
	}

	b, _ = ParseBlock("<10,2,30>")
	if !b.IsNumeric() || b.IsFixed() {
		t.Errorf("Expected numeric, non-fixed list, got numeric=%v fixed=%v", b.IsNumeric(), b.IsFixed())
	}

	b, _ = ParseBlock("<dapi,gfp>")
	if b.IsFixed() || b.IsNumeric() {
		t.Errorf("Expected non-fixed, non-numeric list")
	}

	b, _ = ParseBlock("<1-2,5>")
	if want := []string{"1-2", "5"}; !elementsEqual(b.Elements(), want) {
		t.Errorf("Expected literal elements %v, got %v", want, b.Elements())
	}
}

func TestEmptyBlock(t *testing.T) {
	b, err := ParseBlock("<>")
	if err != nil {
		t.Fatalf("ParseBlock failed: %v", err)
	}
	if want := []string{""}; !elementsEqual(b.Elements(), want) {
		t.Errorf("Expected single empty element, got %v", b.Elements())
	}
}

func TestBlockSyntaxErrors(t *testing.T) {
	for _, raw := range []string{"", "<", ">", "9", "<9", "9>", "<!-A>", "<A-~>", "<A-C:!>",
		"<1-5:0>", "<5-1>", "<a-C>", "<-3>", "<1-2:>", "<1<2>"} {
		if _, err := ParseBlock(raw); !errors.Is(err, ErrBlockSyntax) {
			t.Errorf("Expected ErrBlockSyntax for %q, got %v", raw, err)
		}
	}
}

func TestBlockCustomDelimiters(t *testing.T) {
	b, err := ParseBlock("[1-3]", WithDelimiters("[", "]"))
	if err != nil {
		t.Fatalf("ParseBlock failed: %v", err)
	}
	if b.Count() != 3 {
		t.Errorf("Expected 3 elements, got %d", b.Count())
	}
	if _, err := ParseBlock("<1-3>", WithDelimiters("[", "]")); err == nil {
		t.Error("Expected error for default delimiters under custom options")
	}
}

func TestFixedAndNumericDefinitions(t *testing.T) {
	for _, raw := range []string{"<1-12>", "<a,bb>", "<01,02>", "<1,x>", "<A-Z>"} {
		b, err := ParseBlock(raw)
		if err != nil {
			t.Fatalf("ParseBlock(%q) failed: %v", raw, err)
		}
		fixed, numeric := true, true
		for _, e := range b.Elements() {
			if len(e) != len(b.Elements()[0]) {
				fixed = false
			}
			if e == "" || strings.Trim(e, "0123456789") != "" {
				numeric = false
			}
		}
		if b.IsFixed() != fixed || b.IsNumeric() != numeric {
			t.Errorf("Expected fixed=%v numeric=%v for %q, got %v %v", fixed, numeric, raw, b.IsFixed(), b.IsNumeric())
		}
	}
}
