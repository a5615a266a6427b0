package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToInt64 converts numeric values and numeric strings to int64.
// It reports false for fractional floats, non-numeric strings, and unsupported types,
// so callers can drop the value instead of storing a zero.
func ToInt64(val any) (int64, bool) {
	switch v := val.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case uint:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint32:
		return int64(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, false
		}
		return int64(v), true
	case float32:
		return ToInt64(float64(v))
	case fmt.Stringer:
		return ToInt64(v.String())
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	case []byte:
		return ToInt64(string(v))
	default:
		return 0, false
	}
}

// ToString converts various types to a trimmed string.
// Whole floats are rendered without a fractional part so 12.0 and "12" agree.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// ToBool converts the 0/1 watched flag used by record producers.
// It reports false in the second value when the input is neither a bool nor 0/1.
func ToBool(val any) (bool, bool) {
	switch v := val.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true":
			return true, true
		case "0", "false":
			return false, true
		}
		return false, false
	}

	i, ok := ToInt64(val)
	if !ok || (i != 0 && i != 1) {
		return false, false
	}
	return i == 1, true
}
