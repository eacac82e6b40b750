package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// ReadCSV reads a headered CSV export into the common record shape. Cell
// values stay strings; the mapper's coercions handle the rest.
func ReadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		empty := true
		for i, name := range header {
			if i >= len(row) {
				break
			}
			value := strings.TrimSpace(row[i])
			if value == "" {
				continue
			}
			rec[strings.TrimSpace(name)] = value
			empty = false
		}
		if !empty {
			records = append(records, rec)
		}
	}
	return records, nil
}
