package normalizer

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/webhookx-io/eventsvc/pkg/types"
)

// coerceInt parses the leading base-10 integer of s, ignoring leading
// whitespace and any trailing garbage ("12abc" -> 12, "3.7" -> 3). Digit runs
// beyond int64 come back as float64. The input is returned unchanged when it
// has no leading digits.
func coerceInt(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	str := strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(str) && (str[end] == '+' || str[end] == '-') {
		end++
	}
	digits := end
	for end < len(str) && str[end] >= '0' && str[end] <= '9' {
		end++
	}
	if end == digits {
		return v
	}
	n, err := strconv.ParseInt(str[:end], 10, 64)
	if err != nil {
		f, err := strconv.ParseFloat(str[:end], 64)
		if err != nil {
			return v
		}
		return f
	}
	return n
}

// coerceJSON decodes a JSON-encoded string. Anything that is not a string,
// not valid JSON, or a JSON string literal comes back untouched, so a decoded
// value is never decoded again.
func coerceJSON(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok || s == "" {
		return v
	}
	if !gjson.Valid(s) {
		return v
	}
	result := gjson.Parse(s)
	if result.Type == gjson.String {
		return v
	}
	return result.Value()
}

func coerceNumbers(v interface{}) interface{} {
	return types.ResolveNumbers(v)
}
