// Package export converts persisted activity pages into flattened CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"stravadump/pkg/logger"
)

// MergedFileName is the default output name when exporting a directory.
const MergedFileName = "merged.csv"

// Options configures a CSV export.
type Options struct {
	// SourceColumn, when set, adds a column holding the source JSON file
	// name of each row.
	SourceColumn string
}

// Converter flattens page files into CSV output.
type Converter struct {
	logger logger.Logger
	opts   Options
}

// NewConverter creates a Converter.
func NewConverter(opts Options, log logger.Logger) *Converter {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Converter{logger: log, opts: opts}
}

// Convert flattens the JSON file or directory at input into a CSV at
// output. An empty output picks `<input>.csv` for a file and
// `<input>/merged.csv` for a directory. It returns the number of rows
// written and the output path.
func (c *Converter) Convert(input, output string) (int, string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return 0, "", fmt.Errorf("input path not found: %w", err)
	}

	var files []string
	if info.IsDir() {
		files, err = listJSONFiles(input)
		if err != nil {
			return 0, "", err
		}
		if len(files) == 0 {
			return 0, "", fmt.Errorf("no .json files found in %s", input)
		}
		if output == "" {
			output = filepath.Join(input, MergedFileName)
		}
	} else {
		files = []string{input}
		if output == "" {
			output = strings.TrimSuffix(input, filepath.Ext(input)) + ".csv"
		}
	}

	var allRows []Row
	var allColumns []string
	seen := make(map[string]bool)

	for _, file := range files {
		records, err := loadRecords(file)
		if err != nil {
			return 0, "", err
		}

		rows, columns := FlattenRecords(records)

		if c.opts.SourceColumn != "" {
			name := filepath.Base(file)
			for _, row := range rows {
				row[c.opts.SourceColumn] = name
			}
			if !seen[c.opts.SourceColumn] {
				columns = append(columns, c.opts.SourceColumn)
			}
		}

		allRows = append(allRows, rows...)
		for _, col := range columns {
			if !seen[col] {
				seen[col] = true
				allColumns = append(allColumns, col)
			}
		}

		c.logger.DebugWithFields("flattened page file", map[string]interface{}{
			"file": file,
			"rows": len(rows),
		})
	}

	if err := writeCSV(output, allColumns, allRows); err != nil {
		return 0, "", err
	}

	c.logger.InfoWithFields("export completed", map[string]interface{}{
		"rows":   len(allRows),
		"files":  len(files),
		"output": output,
	})

	return len(allRows), output, nil
}

// listJSONFiles returns the sorted .json files in dir, skipping the run
// manifest.
func listJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if entry.Name() == "meta.json" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// loadRecords decodes one JSON file into a list of objects. A top-level
// array is used as-is; a single object becomes a one-row list; an object
// with a "data" list unwraps to it.
func loadRecords(path string) ([]map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var asList []map[string]interface{}
	if err := json.Unmarshal(data, &asList); err == nil {
		return asList, nil
	}

	var asObject map[string]interface{}
	if err := json.Unmarshal(data, &asObject); err != nil {
		return nil, fmt.Errorf("unsupported JSON in %s: %w", path, err)
	}

	if nested, ok := asObject["data"].([]interface{}); ok {
		records := make([]map[string]interface{}, 0, len(nested))
		for _, item := range nested {
			record, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("unsupported data entry in %s", path)
			}
			records = append(records, record)
		}
		return records, nil
	}

	return []map[string]interface{}{asObject}, nil
}

// writeCSV writes the header and rows, creating parent directories.
func writeCSV(path string, columns []string, rows []Row) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = row[col]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
