package normalizer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ISOLayout renders instants the way historical records stored them.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// maxEpochMillis is the largest distance from the epoch a calendar instant may have.
const maxEpochMillis = 8.64e15

var (
	// layouts carrying their own zone
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999Z0700",
		"2006-01-02T15:04Z07:00",
		time.RFC1123Z,
		time.RFC1123,
		time.RFC850,
	}
	// ISO date-only forms are UTC midnight
	dateLayouts = []string{
		"2006-01-02",
		"2006-01",
	}
	// ISO date-time forms without a zone are local time
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
	}
)

// ParseSchedule converts a schedule value into a calendar instant. Strings are
// parsed as dates, numbers are milliseconds since the Unix epoch. The result
// is UTC and truncated to milliseconds; ok is false when v is not a date.
func ParseSchedule(v interface{}) (t time.Time, ok bool) {
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return canonical(val), true
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return ParseSchedule(*val)
	case string:
		return parseString(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromMillis(f)
	case float64:
		return fromMillis(val)
	case float32:
		return fromMillis(float64(val))
	case int:
		return fromMillis(float64(val))
	case int32:
		return fromMillis(float64(val))
	case int64:
		return fromMillis(float64(val))
	}
	return time.Time{}, false
}

// ISOString renders t in the ISO-8601 form with millisecond precision.
func ISOString(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ScheduleText is the textual form of a raw schedule value, used where the
// store compares schedules as strings.
func ScheduleText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case time.Time:
		return ISOString(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	}
	return fmt.Sprint(v)
}

func canonical(t time.Time) time.Time {
	return t.Truncate(time.Millisecond).UTC()
}

func fromMillis(ms float64) (time.Time, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

func parseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if isDigits(s) {
		// a bare year is an ISO date, any other run of digits is not a date
		if len(s) != 4 {
			return time.Time{}, false
		}
		t, err := time.ParseInLocation("2006", s, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		return canonical(t), true
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return canonical(t), true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return canonical(t), true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return canonical(t), true
		}
	}

	t, err := dateparse.ParseIn(s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return canonical(t), true
}
