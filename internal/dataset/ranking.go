package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// RankEntry is one query's row in a ranking file: the 1-based position at
// which the ground-truth reference was retrieved, followed by auxiliary scores.
type RankEntry struct {
	Rank int       `json:"rank"`
	Aux  []float64 `json:"aux,omitempty"`
}

// Ranking maps query phrase identifiers to their RankEntry and remembers the
// order in which the keys appeared in the source file.
type Ranking struct {
	keys    []string
	entries map[string]RankEntry
}

// NewRanking builds a Ranking from parallel keys and entries. It is mainly
// useful for tests and for callers that assemble rankings in memory.
func NewRanking(keys []string, entries []RankEntry) (*Ranking, error) {
	if len(keys) != len(entries) {
		return nil, fmt.Errorf("ranking: %d keys but %d entries", len(keys), len(entries))
	}
	r := &Ranking{
		keys:    make([]string, 0, len(keys)),
		entries: make(map[string]RankEntry, len(keys)),
	}
	for i, key := range keys {
		if err := r.add(key, entries[i]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Ranking) add(key string, entry RankEntry) error {
	if _, dup := r.entries[key]; dup {
		return fmt.Errorf("ranking: duplicate query %q", key)
	}
	r.keys = append(r.keys, key)
	r.entries[key] = entry
	return nil
}

// Keys returns the query identifiers in source order.
func (r *Ranking) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of queries.
func (r *Ranking) Len() int {
	return len(r.keys)
}

// Get returns the entry for query.
func (r *Ranking) Get(query string) (RankEntry, bool) {
	entry, ok := r.entries[query]
	return entry, ok
}

// LoadRanking reads a `{query: [rank, aux...]}` JSON file.
func LoadRanking(path string) (*Ranking, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ranking %s: %w", path, err)
	}
	r, err := ParseRanking(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse ranking %s: %w", path, err)
	}
	return r, nil
}

// ParseRanking decodes a ranking object, preserving key order.
func ParseRanking(src io.Reader) (*Ranking, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(sanitizeNonFinite(data)))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	r := &Ranking{entries: map[string]RankEntry{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected query key, got %v", tok)
		}
		var values []*float64
		if err := dec.Decode(&values); err != nil {
			return nil, fmt.Errorf("query %q: %w", key, err)
		}
		entry, err := rankEntryFromValues(values)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", key, err)
		}
		if err := r.add(key, entry); err != nil {
			return nil, err
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("trailing data after ranking object: %w", err)
		}
		return nil, fmt.Errorf("trailing data after ranking object: %v", tok)
	}
	return r, nil
}

func rankEntryFromValues(values []*float64) (RankEntry, error) {
	if len(values) == 0 || values[0] == nil {
		return RankEntry{}, fmt.Errorf("missing rank value")
	}
	rank := *values[0]
	if rank != math.Trunc(rank) || rank < 0 || rank > math.MaxInt32 {
		return RankEntry{}, fmt.Errorf("rank %v is not a non-negative integer", rank)
	}
	entry := RankEntry{Rank: int(rank)}
	if len(values) > 1 {
		entry.Aux = make([]float64, len(values)-1)
		for i, v := range values[1:] {
			if v == nil {
				entry.Aux[i] = math.NaN()
				continue
			}
			entry.Aux[i] = *v
		}
	}
	return entry, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
