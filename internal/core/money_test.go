package core

import (
	"math"
	"testing"
)

func TestParseDecimalToMiliunits(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 1000, true},
		{"1.0", 1000, true},
		{"40.00", 40000, true},
		{"1.23", 1230, true},
		{"1,23", 1230, true},
		{"0.001", 1, true},
		{"1.0005", 1001, true}, // half away from zero
		{"1.0004", 1000, true},
		{".5", 500, true},
		{" 2.50 ", 2500, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.0004", 0, false},
		{"1e3", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1.234,56", 0, false},
		{".", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToMiliunits(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error, got %d", tc.in, got)
			}
		}
	}
}

func TestFormatMiliunits(t *testing.T) {
	cases := map[int64]string{
		40000:  "40.00",
		1:      "0.001",
		1005:   "1.005",
		1230:   "1.23",
		0:      "0.00",
		-12500: "-12.50",
	}
	for in, want := range cases {
		if got := FormatMiliunits(in); got != want {
			t.Fatalf("FormatMiliunits(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestMiliunitsRoundTrip(t *testing.T) {
	for _, in := range []string{"40.00", "0.01", "1.005", "123456.78", "10.50"} {
		v, err := ParseDecimalToMiliunits(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		back, err := ParseDecimalToMiliunits(FormatMiliunits(v))
		if err != nil || back != v {
			t.Fatalf("round trip %q: got %d want %d (err=%v)", in, back, v, err)
		}
	}
}

func TestMoneyUnits(t *testing.T) {
	if got := (Money{Miliunits: 12345}).Units(); math.Abs(got-12.345) > 1e-9 {
		t.Fatalf("unexpected units: %v", got)
	}
}
