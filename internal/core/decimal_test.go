package core

import (
	"testing"
	"time"
)

func TestLenientDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"5000000", "5000000"},
		{" 12.5 ", "12.5"},
		{"1e5", "0"},
		{"1e10000000", "0"},
		{"1e-2000000000", "0"},
		{"-250.75", "-250.75"},
		{"+3", "3"},
		{".5", "0"},
		{"123456789012345678901234567890123", "0"},
		{"", "0"},
		{"abc", "0"},
		{"1,000", "0"},
		{"12.5%", "0"},
	}
	for _, tc := range cases {
		if got := LenientDecimal(tc.in).String(); got != tc.want {
			t.Errorf("LenientDecimal(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	if _, err := ParseDecimal("  "); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	d, err := ParseDecimal("11.5")
	if err != nil || d.String() != "11.5" {
		t.Fatalf("ParseDecimal(11.5) = %s, %v", d, err)
	}
	for _, bad := range []string{"1e5", "1E5", "1e10000000", "1e-2000000000", "0x10", "1_000", "Inf", "NaN"} {
		if _, err := ParseDecimal(bad); err != ErrInvalidAmount {
			t.Errorf("ParseDecimal(%q) error = %v, want ErrInvalidAmount", bad, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("String() = %q", d.String())
	}
	for _, bad := range []string{"", "2023-02-29", "2024/01/01", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) expected error", bad)
		}
	}
}

func TestDayOf(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 3, 1, 1, 0, 0, 0, ist) // still Feb 29 in UTC
	if got := DayOf(now).String(); got != "2024-03-01" {
		t.Fatalf("DayOf() = %s, want local calendar day 2024-03-01", got)
	}
	if got := DayOf(now).AddDays(-30).String(); got != "2024-01-31" {
		t.Fatalf("AddDays(-30) = %s", got)
	}
}
