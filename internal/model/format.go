package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Placeholder is shown for missing values.
const Placeholder = "-"

// FormatCurrency renders an amount as $1,234.56, or the placeholder when nil.
func FormatCurrency(m *Money) string {
	if m == nil {
		return Placeholder
	}
	return FormatAmount(float64(*m))
}

// FormatAmount renders v as $1,234.56.
func FormatAmount(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatDate trims a date or timestamp to YYYY-MM-DD.
func FormatDate(s *string) string {
	if s == nil || *s == "" {
		return Placeholder
	}
	if len(*s) >= 10 {
		return (*s)[:10]
	}
	return *s
}

// Text returns *s or the placeholder.
func Text(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return Placeholder
	}
	return *s
}

// FormatID returns the decimal id or the placeholder.
func FormatID(id *int64) string {
	if id == nil {
		return Placeholder
	}
	return strconv.FormatInt(*id, 10)
}

// FormatSize renders a byte count as B, KB or MB.
func FormatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
