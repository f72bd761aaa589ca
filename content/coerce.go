package content

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// coerceDate converts a frontmatter value to a time. Strings without a zone
// are read as UTC; integers are Unix epoch milliseconds.
func coerceDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, fmt.Errorf("empty date")
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse %q as a date", s)
	default:
		n, err := coerceInt(v)
		if err != nil {
			return time.Time{}, fmt.Errorf("expected date, got %T", v)
		}
		return time.UnixMilli(int64(n)).UTC(), nil
	}
}

// coerceInt accepts the integer shapes yaml.v3 produces, plus floats with no
// fractional part.
func coerceInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case uint64:
		if x > math.MaxInt {
			return 0, fmt.Errorf("integer %d out of range", x)
		}
		return int(x), nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
			return 0, fmt.Errorf("expected integer, got %v", x)
		}
		if x >= math.MaxInt || x < math.MinInt {
			return 0, fmt.Errorf("integer %v out of range", x)
		}
		return int(x), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}
