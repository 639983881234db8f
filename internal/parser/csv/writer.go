package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"csvselect/internal/record"
)

// WriteOptions configures Render.
type WriteOptions struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// UseCRLF terminates lines with \r\n instead of \n.
	UseCRLF bool
}

// Render serializes header and rows as delimited UTF-8 text. Each row
// contributes its values for header, in header order.
func Render(header []string, rows []record.Record, opt WriteOptions) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if opt.Comma != 0 {
		w.Comma = opt.Comma
	}
	w.UseCRLF = opt.UseCRLF

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	eol := "\n"
	if opt.UseCRLF {
		eol = "\r\n"
	}
	for i, r := range rows {
		vals := r.Values(header)
		if len(vals) == 1 && vals[0] == "" {
			// csv.Writer emits a blank line here, which readers skip.
			w.Flush()
			buf.WriteString(`""` + eol)
			continue
		}
		if err := w.Write(vals); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
