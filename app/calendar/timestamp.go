package calendar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the wire format for query bounds: UTC, no offset.
const TimestampLayout = "2006-01-02T15:04:05"

// FormatTimestamp formats epoch seconds as TimestampLayout in UTC.
// Anything that is not a number is returned unchanged.
func FormatTimestamp(v any) string {
	epoch, ok := toEpoch(v)
	if !ok {
		if s, isString := v.(string); isString {
			return s
		}
		return fmt.Sprint(v)
	}
	return time.Unix(epoch, 0).UTC().Format(TimestampLayout)
}

func toEpoch(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintEpoch(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintEpoch(n)
	case uintptr:
		return uintEpoch(uint64(n))
	case float32:
		return floatEpoch(float64(n))
	case float64:
		return floatEpoch(n)
	case time.Time:
		return n.Unix(), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return floatEpoch(f)
	default:
		return 0, false
	}
}

func uintEpoch(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

func floatEpoch(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > 1e15 {
		return 0, false
	}
	return int64(math.Floor(f)), true
}
