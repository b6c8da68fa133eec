package commands

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var errBadDuration = errors.New("duración inválida")

// parseDuration parses human durations like "30s", "10m", "1h30m" or "2d".
// Units are s, m, h and d; segments accumulate left to right.
func parseDuration(input string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return 0, errBadDuration
	}

	var total time.Duration
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
			continue
		}

		if digits.Len() == 0 {
			return 0, errBadDuration
		}
		n, err := strconv.ParseInt(digits.String(), 10, 64)
		if err != nil {
			return 0, errBadDuration
		}
		digits.Reset()

		switch r {
		case 's':
			total += time.Duration(n) * time.Second
		case 'm':
			total += time.Duration(n) * time.Minute
		case 'h':
			total += time.Duration(n) * time.Hour
		case 'd':
			total += time.Duration(n) * 24 * time.Hour
		default:
			return 0, errBadDuration
		}
	}

	// Un número sin unidad se interpreta como minutos
	if digits.Len() > 0 {
		n, err := strconv.ParseInt(digits.String(), 10, 64)
		if err != nil {
			return 0, errBadDuration
		}
		total += time.Duration(n) * time.Minute
	}

	if total <= 0 {
		return 0, errBadDuration
	}
	return total, nil
}

// formatDuration renders a duration in the same compact style parseDuration
// accepts, for confirmation messages.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}

	var b strings.Builder
	if days := d / (24 * time.Hour); days > 0 {
		b.WriteString(strconv.FormatInt(int64(days), 10))
		b.WriteString("d")
		d -= days * 24 * time.Hour
	}
	if hours := d / time.Hour; hours > 0 {
		b.WriteString(strconv.FormatInt(int64(hours), 10))
		b.WriteString("h")
		d -= hours * time.Hour
	}
	if mins := d / time.Minute; mins > 0 {
		b.WriteString(strconv.FormatInt(int64(mins), 10))
		b.WriteString("m")
		d -= mins * time.Minute
	}
	if secs := d / time.Second; secs > 0 {
		b.WriteString(strconv.FormatInt(int64(secs), 10))
		b.WriteString("s")
	}
	if b.Len() == 0 {
		return "0s"
	}
	return b.String()
}
