package number_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/cockroachdb/apd/v3"

	"github.com/reoring/jspec/number"
)

func TestFormatDecimal_Canonical(t *testing.T) {
	cases := map[string]string{
		"1.500":      "1.5",
		"100":        "100",
		"100.00":     "100",
		"-0.00":      "0",
		"0.0001":     "0.0001",
		"1e21":       "1e+21",
		"1.23e-10":   "1.23e-10",
		"-12.5E3":    "-12500",
		"0.00000001": "1e-8",
		"123.456":    "123.456",
	}
	for in, want := range cases {
		d, err := number.ParseBigDecimal([]byte(in))
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got := number.FormatDecimal(d); got != want {
			t.Fatalf("FormatDecimal(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatFloat64(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1e21, "1e+21"},
		{1e-7, "1e-7"},
		{0.000001, "0.000001"},
		{1.5, "1.5"},
		{100, "100"},
		{math.Copysign(0, -1), "-0"},
	}
	for _, c := range cases {
		if got := number.FormatFloat64(c.in); got != c.want {
			t.Fatalf("FormatFloat64(%v) = %q, want %q", c.in, got, c.want)
		}
	}
	if _, ok := number.Format(math.NaN()); ok {
		t.Fatalf("NaN must not be formattable")
	}
}

// equalNumeric compares two values produced by ParseAs mathematically.
func equalNumeric(a, b any) bool {
	switch x := a.(type) {
	case int32:
		y, ok := b.(int32)
		return ok && x == y
	case int64:
		y, ok := b.(int64)
		return ok && x == y
	case *big.Int:
		y, ok := b.(*big.Int)
		return ok && x.Cmp(y) == 0
	case *apd.Decimal:
		y, ok := b.(*apd.Decimal)
		return ok && x.Cmp(y) == 0
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	}
	return false
}

func TestRoundTrip_PreservesMathematicalValue(t *testing.T) {
	literals := []string{"0", "-0", "7", "-2147483648", "1000E3", "123456789012", "99999999999999999999", "1.50", "-1E-2", "6.02214076e23", "1e-300", "0.1"}
	kinds := []number.Kind{number.Exact, number.Int32, number.Int64, number.BigInt, number.BigDecimal, number.Double}
	for _, lit := range literals {
		for _, k := range kinds {
			v, err := number.ParseAs([]byte(lit), k)
			if err != nil {
				continue // not representable in this kind
			}
			s, ok := number.Format(v)
			if !ok {
				t.Fatalf("format %q as %s failed", lit, k)
			}
			v2, err := number.ParseAs([]byte(s), k)
			if err != nil {
				t.Fatalf("reparse %q (from %q) as %s: %v", s, lit, k, err)
			}
			if !equalNumeric(v, v2) {
				t.Fatalf("round trip %q as %s: %v != %v (text %q)", lit, k, v, v2, s)
			}
		}
	}
}
