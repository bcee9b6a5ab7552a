package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// ResultTablePath returns the per-query candidate table location.
func ResultTablePath(dir, query, suffix string) string {
	return filepath.Join(dir, query+suffix)
}

// ReadResultTable reads a per-query candidate table. Row 0 carries the
// ground-truth rank, rows 1..N the ranked candidates. Rows may have differing
// field counts and cells are kept exactly as written, surrounding spaces and
// stray quotes included. A missing file is returned as an error satisfying
// errors.Is(err, fs.ErrNotExist).
func ReadResultTable(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse result table %s: %w", path, err)
	}
	return rows, nil
}
