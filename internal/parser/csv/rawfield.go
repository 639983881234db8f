package csv

import (
	"bytes"
	"strings"
)

var crlf = []byte("\r\n")

// rawFields recovers quoted values verbatim. encoding/csv rewrites \r\n to
// \n even inside quotes; the values are re-read from the input so they pass
// through byte for byte.
type rawFields struct {
	text  []byte
	lines []int // byte offset of each line start
}

// newRawFields returns nil when text has no \r\n and nothing needs fixing.
func newRawFields(text []byte) *rawFields {
	if !bytes.Contains(text, crlf) {
		return nil
	}
	lines := []int{0}
	for i, b := range text {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &rawFields{text: text, lines: lines}
}

// restore rewrites the fields of row that contain a newline with the quoted
// text they were read from. pos reports the 1-based line and byte column
// where field i starts, as csv.Reader.FieldPos does.
func (f *rawFields) restore(row []string, pos func(i int) (line, col int)) {
	if f == nil {
		return
	}
	for i, v := range row {
		if !strings.Contains(v, "\n") {
			continue
		}
		line, col := pos(i)
		if line < 1 || line > len(f.lines) {
			continue
		}
		off := f.lines[line-1] + col - 1
		if off < 0 || off >= len(f.text) || f.text[off] != '"' {
			continue
		}
		row[i] = unquote(f.text[off+1:])
	}
}

// unquote reads a quoted field body up to its closing quote, collapsing
// doubled quotes.
func unquote(b []byte) string {
	var sb strings.Builder
	for i := 0; i < len(b); i++ {
		if b[i] == '"' {
			if i+1 < len(b) && b[i+1] == '"' {
				sb.WriteByte('"')
				i++
				continue
			}
			break
		}
		sb.WriteByte(b[i])
	}
	return sb.String()
}
