package export

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Row is one flattened record: column name to rendered cell value.
type Row map[string]string

// isScalar reports whether a decoded JSON value is a scalar.
func isScalar(value interface{}) bool {
	switch value.(type) {
	case nil, string, float64, bool, json.Number:
		return true
	}
	return false
}

// renderScalar converts a scalar JSON value to its CSV cell text.
func renderScalar(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case json.Number:
		return v.String()
	case float64:
		// Keep integers free of a trailing ".0"
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("%v", value)
}

// flattenValue flattens one JSON value into out under the given key prefix.
// Objects flatten to parent_child columns, lists of scalars to indexed
// columns, and mixed lists are embedded as JSON text.
func flattenValue(value interface{}, prefix string, out Row) {
	if isScalar(value) {
		out[prefix] = renderScalar(value)
		return
	}

	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			nestedPrefix := key
			if prefix != "" {
				nestedPrefix = prefix + "_" + key
			}
			flattenValue(v[key], nestedPrefix, out)
		}

	case []interface{}:
		allScalar := true
		for _, item := range v {
			if !isScalar(item) {
				allScalar = false
				break
			}
		}
		if allScalar {
			for i, item := range v {
				out[fmt.Sprintf("%s_%d", prefix, i)] = renderScalar(item)
			}
		} else {
			encoded, err := json.Marshal(v)
			if err != nil {
				out[prefix] = fmt.Sprintf("%v", v)
				return
			}
			out[prefix] = string(encoded)
		}

	default:
		out[prefix] = fmt.Sprintf("%v", value)
	}
}

// FlattenRecords flattens decoded JSON objects into rows and collects the
// column names in first-appearance order.
func FlattenRecords(records []map[string]interface{}) ([]Row, []string) {
	rows := make([]Row, 0, len(records))
	var columns []string
	seen := make(map[string]bool)

	for _, record := range records {
		row := make(Row)

		keys := make([]string, 0, len(record))
		for key := range record {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			flattenValue(record[key], key, row)
		}
		rows = append(rows, row)

		rowColumns := make([]string, 0, len(row))
		for col := range row {
			rowColumns = append(rowColumns, col)
		}
		sort.Strings(rowColumns)
		for _, col := range rowColumns {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}

	return rows, columns
}
