package datanorm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// yesTokens are the string values read as availability = true.
var yesTokens = map[string]bool{
	"ja":   true,
	"yes":  true,
	"true": true,
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	default:
		return false
	}
}

// scalarString renders a scalar cell as trimmed text. Numbers are written
// without exponent so "2024" stays "2024" after a JSON round trip.
func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case []any:
		return strings.Join(listValue(val), ", ")
	case []string:
		return strings.Join(listValue(val), ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// listValue accepts a native list or a comma-joined string. Elements are
// trimmed and empties dropped. Never returns nil.
func listValue(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case nil:
	case []any:
		for _, item := range val {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, item := range val {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
	default:
		for _, part := range strings.Split(scalarString(val), ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// availability is true only for boolean true or a yes token.
func availability(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return yesTokens[strings.ToLower(strings.TrimSpace(val))]
	default:
		return false
	}
}
