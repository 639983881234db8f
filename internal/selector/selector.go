// Package selector resolves which columns a run emits and projects input
// records onto them.
//
// Output columns always follow the order of the source header. A request for
// "city,name" against a header "name,email,city" yields "name,city"; repeated
// names in the request are emitted once.
package selector

import (
	"errors"
	"fmt"
	"strings"

	"csvselect/internal/record"
	"csvselect/internal/transformer"
)

// ErrUnknownColumn is wrapped by every *ColumnError.
var ErrUnknownColumn = errors.New("column not found in input")

// ColumnError lists requested columns that are absent from the header.
type ColumnError struct {
	// Missing holds the unknown names in request order, without duplicates.
	Missing []string
}

func (e *ColumnError) Error() string {
	quoted := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	noun := "column"
	if len(e.Missing) > 1 {
		noun = "columns"
	}
	return fmt.Sprintf("%s not found in input file: %s", noun, strings.Join(quoted, ", "))
}

func (e *ColumnError) Unwrap() error { return ErrUnknownColumn }

// Select returns the columns to emit. An empty request selects the whole
// header. Otherwise every requested name must exist in header, and the result
// is header filtered to the requested set.
func Select(header, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return append([]string(nil), header...), nil
	}
	if err := Validate(header, requested); err != nil {
		return nil, err
	}

	want := make(map[string]struct{}, len(requested))
	for _, r := range requested {
		want[r] = struct{}{}
	}
	out := make([]string, 0, len(want))
	for _, h := range header {
		if _, ok := want[h]; ok {
			out = append(out, h)
			delete(want, h)
		}
	}
	return out, nil
}

// Validate reports a *ColumnError when any of names is not in header.
func Validate(header, names []string) error {
	known := make(map[string]struct{}, len(header))
	for _, h := range header {
		known[h] = struct{}{}
	}
	var missing []string
	seen := map[string]struct{}{}
	for _, n := range names {
		if _, ok := known[n]; ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		missing = append(missing, n)
	}
	if len(missing) > 0 {
		return &ColumnError{Missing: missing}
	}
	return nil
}

// Project builds the output record for rec: exactly columns, each value run
// through its registered transformer when there is one. rec is not modified.
func Project(rec record.Record, columns []string, reg transformer.Registry) record.Record {
	out := make(record.Record, len(columns))
	for _, c := range columns {
		v := rec[c]
		if t, ok := reg.Lookup(c); ok {
			v = t.Transform(v)
		}
		out[c] = v
	}
	return out
}
