package sim

import "testing"

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{850, "$850"},
		{0, "$0"},
		{12_500, "$12.5K"},
		{4_200_000, "$4.2M"},
		{1_100_000_000, "$1.1B"},
		{-3_400_000, "-$3.4M"},
		{999, "$999"},
		{1_000, "$1.0K"},
	}
	for _, tc := range tests {
		if got := FormatMoney(tc.in); got != tc.want {
			t.Fatalf("FormatMoney(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.123, "+12.3%"},
		{-0.05, "-5.0%"},
		{0, "+0.0%"},
	}
	for _, tc := range tests {
		if got := FormatPercent(tc.in); got != tc.want {
			t.Fatalf("FormatPercent(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
