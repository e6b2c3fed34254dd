package google

import (
	"fmt"
	"strings"
)

// findRowByID scans a single-column values matrix for id and returns its
// 1-based sheet row.
func findRowByID(values [][]interface{}, id string) (int, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, false
	}
	for i, row := range values {
		cols := toStrings(row)
		if len(cols) == 0 {
			continue
		}
		if cols[0] == id {
			return i + 1, true
		}
	}
	return 0, false
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
