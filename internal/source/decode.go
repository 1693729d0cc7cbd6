// Package source reads the upstream per-state case table.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
)

// Upstream column names.
const (
	DateColumn      = "date"
	LocationColumn  = "state_abbrev"
	ConfirmedColumn = "confirmed"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// missingTokens are confirmed values treated as absent.
var missingTokens = map[string]struct{}{
	"":    {},
	"na":  {},
	"nan": {},
}

// Decode parses the upstream CSV. Columns are located by header name and
// any extra columns are ignored.
func Decode(r io.Reader) ([]schema.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := map[string]int{DateColumn: -1, LocationColumn: -1, ConfirmedColumn: -1}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if pos, ok := idx[name]; ok && pos == -1 {
			idx[name] = i
		}
	}
	for _, col := range []string{DateColumn, LocationColumn, ConfirmedColumn} {
		if idx[col] == -1 {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}

	var records []schema.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		field := func(col string) string {
			if i := idx[col]; i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		date, err := schema.ParseDate(field(DateColumn))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		confirmed, err := parseCount(field(ConfirmedColumn))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		records = append(records, schema.RawRecord{
			Location:  schema.NormalizeLocation(field(LocationColumn)),
			Date:      date,
			Confirmed: confirmed,
		})
	}
	return records, nil
}

// parseCount accepts non-negative integers, including float renderings with no fraction.
func parseCount(s string) (*int64, error) {
	if _, ok := missingTokens[strings.ToLower(s)]; ok {
		return nil, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return nil, fmt.Errorf("negative case count %d", n)
		}
		return &n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid case count %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f >= math.MaxInt64 {
		return nil, fmt.Errorf("invalid case count %q", s)
	}
	if f < 0 {
		return nil, fmt.Errorf("negative case count %q", s)
	}
	n := int64(f)
	return &n, nil
}
