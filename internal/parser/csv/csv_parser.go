// Package csv reads a delimited document fully into memory and writes one
// back out. Input is decoded from the configured text encoding first; the
// header row is taken verbatim apart from a leading UTF-8 BOM.
package csv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"csvselect/internal/record"
	"csvselect/internal/textenc"
)

var (
	// ErrNoHeader is returned for input without a header row.
	ErrNoHeader = errors.New("input has no header row")

	// ErrMalformedHeader is wrapped when header names are empty or repeated.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrMalformedRow is wrapped by every *RowError.
	ErrMalformedRow = errors.New("malformed row")
)

// RowError reports a data row that could not be read or whose width differs
// from the header's. Line is the 1-based line of the input where the row
// starts.
type RowError struct {
	Line int
	Want int
	Got  int
	Err  error
}

func (e *RowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("row at line %d: incorrect number of fields (expected %d, got %d)", e.Line, e.Want, e.Got)
}

func (e *RowError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedRow}
	}
	return []error{ErrMalformedRow, e.Err}
}

// Options configures the parser. The zero value reads comma-separated UTF-8.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// Codec decodes the raw input. The zero Codec is UTF-8.
	Codec textenc.Codec
}

// Parser reads documents according to Options. It is safe to reuse across
// inputs.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads all of r. The first row becomes the header; every later row
// becomes a Record keyed by it. A row with a different number of fields than
// the header is an error: rows are never padded or truncated. Line breaks
// inside quoted values are kept as written, \r\n included.
func (p *Parser) Parse(r io.Reader) (*record.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	text, err := p.opt.Codec.Decode(raw)
	if err != nil {
		return nil, err
	}

	body := stripBOM(text)
	quoted := newRawFields(body)
	cr := csv.NewReader(bytes.NewReader(body))
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
	}
	quoted.restore(header, cr.FieldPos)
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	doc := &record.Document{Header: header}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			return nil, &RowError{Line: line, Err: err}
		}
		if len(row) != len(header) {
			line, _ := cr.FieldPos(0)
			return nil, &RowError{Line: line, Want: len(header), Got: len(row)}
		}

		quoted.restore(row, cr.FieldPos)
		rec := make(record.Record, len(row))
		for i, val := range row {
			rec[header[i]] = val
		}
		doc.Rows = append(doc.Rows, rec)
	}
	return doc, nil
}

// checkHeader rejects empty and duplicate column names; both would make
// records keyed by name ambiguous.
func checkHeader(h []string) error {
	seen := make(map[string]int, len(h))
	for i, name := range h {
		if name == "" {
			return fmt.Errorf("%w: column %d has an empty name", ErrMalformedHeader, i+1)
		}
		if j, dup := seen[name]; dup {
			return fmt.Errorf("%w: column %q appears at positions %d and %d", ErrMalformedHeader, name, j+1, i+1)
		}
		seen[name] = i
	}
	return nil
}
