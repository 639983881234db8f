// Package textenc resolves text-encoding names and converts whole documents
// between those encodings and UTF-8.
package textenc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultName is the encoding used when none is configured.
const DefaultName = "utf-8"

// ErrEncoding is wrapped by every error this package returns.
var ErrEncoding = errors.New("encoding error")

// DecodeError locates the first undecodable byte sequence in the input.
// Line and Column are 1-based; Offset is the byte offset into the raw input,
// or -1 when the decoder could not say where it failed.
type DecodeError struct {
	Encoding string
	Line     int
	Column   int
	Offset   int
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("cannot decode input as %s: %v", e.Encoding, e.Err)
	}
	return fmt.Sprintf("cannot decode input as %s: invalid byte sequence at line %d, column %d (byte offset %d)",
		e.Encoding, e.Line, e.Column, e.Offset)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrEncoding}
	}
	return []error{ErrEncoding, e.Err}
}

// Codec is a resolved encoding.
type Codec struct {
	name string
	enc  encoding.Encoding
}

// aliases are resolved before either index. The WHATWG labels would map
// "ascii" to windows-1252.
var aliases = map[string]string{
	"ascii":   "us-ascii",
	"646":     "us-ascii",
	"latin-1": "iso-8859-1",
}

// Lookup resolves name against the IANA registry and the WHATWG label set.
// Underscores are accepted in place of hyphens ("utf_8", "iso_8859_2").
// An empty name selects UTF-8.
func Lookup(name string) (Codec, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		n = DefaultName
	}
	n = strings.ToLower(strings.ReplaceAll(n, "_", "-"))
	if a, ok := aliases[n]; ok {
		n = a
	}

	// ianaindex may return (nil, nil) for registered names that have no
	// implementation in x/text.
	if enc, err := ianaindex.IANA.Encoding(n); err == nil && enc != nil {
		return Codec{name: strings.ToLower(ianaName(enc, n)), enc: enc}, nil
	}
	if enc, err := htmlindex.Get(n); err == nil {
		canon, cerr := htmlindex.Name(enc)
		if cerr != nil {
			canon = n
		}
		return Codec{name: canon, enc: enc}, nil
	}
	return Codec{}, fmt.Errorf("%w: unknown encoding %q", ErrEncoding, name)
}

// ianaName prefers the MIME name ("ISO-8859-1") over the registry's primary
// name ("ISO_8859-1:1987").
func ianaName(enc encoding.Encoding, fallback string) string {
	for _, idx := range []*ianaindex.Index{ianaindex.MIME, ianaindex.IANA} {
		if name, err := idx.Name(enc); err == nil && name != "" {
			return name
		}
	}
	return fallback
}

// Name is the canonical, lower-case name of the codec.
func (c Codec) Name() string {
	if c.enc == nil {
		return DefaultName
	}
	return c.name
}

// IsUTF8 reports whether the codec is plain UTF-8, in which case Decode and
// Encode only validate.
func (c Codec) IsUTF8() bool {
	return c.enc == nil || c.enc == unicode.UTF8
}

// Decode converts raw input to UTF-8. Input that is not valid in the codec
// is an error reporting the first bad sequence with its position.
func (c Codec) Decode(raw []byte) ([]byte, error) {
	if c.IsUTF8() {
		if off := invalidOffset(raw); off >= 0 {
			line, col := position(raw, off)
			return nil, &DecodeError{Encoding: c.Name(), Line: line, Column: col, Offset: off}
		}
		return raw, nil
	}
	out, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, &DecodeError{Encoding: c.Name(), Offset: -1, Err: err}
	}
	if err := c.checkSubstitutions(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

var replacement = []byte(string(utf8.RuneError))

// checkSubstitutions finds the first U+FFFD in out that the decoder put in
// place of bytes it could not map. A U+FFFD that re-encodes to the raw bytes
// it came from was literally present in the input and is kept.
func (c Codec) checkSubstitutions(raw, out []byte) error {
	for from := 0; ; {
		i := bytes.Index(out[from:], replacement)
		if i < 0 {
			return nil
		}
		k := from + i
		end := k + len(replacement)

		prefix, err := c.enc.NewEncoder().Bytes(out[:k])
		if err != nil {
			return &DecodeError{Encoding: c.Name(), Offset: -1, Err: err}
		}
		through, err := c.enc.NewEncoder().Bytes(out[:end])
		if err != nil || !bytes.HasPrefix(raw, through) {
			line, col := position(out, k)
			return &DecodeError{Encoding: c.Name(), Line: line, Column: col, Offset: min(len(prefix), len(raw))}
		}
		from = end
	}
}

// Encode converts UTF-8 text to the codec's encoding. Runes the target
// encoding cannot represent are an error.
func (c Codec) Encode(text []byte) ([]byte, error) {
	if c.IsUTF8() {
		return text, nil
	}
	out, err := c.enc.NewEncoder().Bytes(text)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot encode output as %s: %v", ErrEncoding, c.Name(), err)
	}
	return out, nil
}

// invalidOffset returns the byte offset of the first invalid UTF-8 sequence
// in b, or -1.
func invalidOffset(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// position converts a byte offset into a 1-based line and rune column.
func position(b []byte, off int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < off; {
		r, size := utf8.DecodeRune(b[i:])
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i += size
	}
	return line, col
}
