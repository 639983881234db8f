package builtin

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const nbspace = "\u00a0"

// Normalize replaces NO-BREAK SPACE with a plain space and trims the result.
// Exported data from spreadsheets is full of them.
type Normalize struct{}

func (Normalize) Transform(v string) string {
	return strings.TrimSpace(strings.ReplaceAll(v, nbspace, " "))
}

// FoldAccents strips combining marks, so "Příliš" becomes "Prilis". Input
// that fails to fold is returned unchanged.
type FoldAccents struct{}

func (FoldAccents) Transform(v string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	out, _, err := transform.String(t, v)
	if err != nil {
		return v
	}
	return out
}
