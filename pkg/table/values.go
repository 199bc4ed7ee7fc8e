package table

import (
	"fmt"
	"strconv"
	"strings"
)

// InferValue converts a raw textual field to a typed cell value. The
// checks mirror what the readers need: empty fields become nil, then
// integers, floats and booleans are tried in that order, and anything
// else stays a string. Surrounding whitespace is not significant.
func InferValue(raw string) interface{} {
	value := strings.TrimSpace(raw)

	if value == "" {
		return nil
	}

	if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
		return intVal
	}

	if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
		return floatVal
	}

	switch value {
	case "true", "TRUE", "True":
		return true
	case "false", "FALSE", "False":
		return false
	}

	return raw
}

// FormatValue renders a cell value back to its textual form. nil renders
// as the empty field. It is the inverse of InferValue up to whitespace.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Truthy interprets a cell value as a boolean flag. Native booleans are
// used as-is; strings accept the strconv.ParseBool forms; numbers are
// true when non-zero. nil and everything unrecognized are false.
func Truthy(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		return err == nil && b
	case int64:
		return val != 0
	case int:
		return val != 0
	case float64:
		return val != 0
	default:
		return false
	}
}
