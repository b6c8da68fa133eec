package commands

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		input string
		want  time.Duration
	}{
		{"30s", 30 * time.Second},
		{"10m", 10 * time.Minute},
		{"1h", time.Hour},
		{"2d", 48 * time.Hour},
		{"1h30m", 90 * time.Minute},
		{"1d12h", 36 * time.Hour},
		{"  10M ", 10 * time.Minute},
		{"15", 15 * time.Minute},
	}

	for _, tc := range cases {
		got, err := parseDuration(tc.input)
		if err != nil {
			t.Errorf("parseDuration(%q) error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseDurationRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "abc", "10x", "h", "-5m", "m10"} {
		if _, err := parseDuration(input); err == nil {
			t.Errorf("parseDuration(%q) accepted invalid input", input)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{90 * time.Minute, "1h30m"},
		{48 * time.Hour, "2d"},
		{36*time.Hour + 15*time.Minute, "1d12h15m"},
		{45 * time.Second, "45s"},
		{0, "0s"},
	}

	for _, tc := range cases {
		if got := formatDuration(tc.d); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
