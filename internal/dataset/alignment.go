package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// AlignmentPath is a DTW warping path: each step pairs a query frame index
// with a reference frame index.
type AlignmentPath [][2]int

// AlignmentPathFile returns where the precomputed path between query and
// reference is stored inside an alignment directory.
func AlignmentPathFile(dir, query, reference string) string {
	return filepath.Join(dir, query+"_"+reference+".csv")
}

// LoadAlignmentPath reads a two-column CSV of frame index pairs. A leading
// non-numeric header row is skipped; indices written as floats (3.0) are accepted.
func LoadAlignmentPath(path string) (AlignmentPath, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open alignment path: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var steps AlignmentPath
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse alignment path %s: %w", path, err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("alignment path %s line %d: expected 2 fields, got %d", path, line, len(record))
		}
		i, errI := parseIndex(record[0])
		j, errJ := parseIndex(record[1])
		if errI != nil || errJ != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("alignment path %s line %d: %w", path, line, errors.Join(errI, errJ))
		}
		steps = append(steps, [2]int{i, j})
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("alignment path %s is empty", path)
	}
	return steps, nil
}

func parseIndex(value string) (int, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < 0 {
		return 0, fmt.Errorf("index %q is not a non-negative integer", value)
	}
	return int(f), nil
}
