package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexibleString converts a json.RawMessage to a string, handling the shapes
// model descriptions actually use: plain strings, arrays of lines (multi-line
// DAX expressions are stored as string arrays in model.bim), numbers and
// booleans. Returns empty string for null/absent values.
func FlexibleString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	// Multi-line expression stored as an array of lines.
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return strings.TrimSpace(strings.Join(lines, "\n"))
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	return string(raw)
}
