// Package builtin provides the stock cell transformers and a factory that
// builds them by kind name for config files and the CLI.
package builtin

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Identity returns its input unchanged.
type Identity struct{}

func (Identity) Transform(v string) string { return v }

// Upper maps a value to its Unicode uppercase form.
type Upper struct{}

// Casers carry state, so one is built per call.
func (Upper) Transform(v string) string {
	if v == "" {
		return v
	}
	return cases.Upper(language.Und).String(v)
}

// Lower maps a value to its Unicode lowercase form.
type Lower struct{}

func (Lower) Transform(v string) string {
	if v == "" {
		return v
	}
	return cases.Lower(language.Und).String(v)
}

// Title upper-cases the first letter of every word and lower-cases the rest.
type Title struct{}

func (Title) Transform(v string) string {
	if v == "" {
		return v
	}
	return cases.Title(language.Und).String(v)
}

// Strip removes leading and trailing Unicode whitespace. Interior whitespace
// is left alone.
type Strip struct{}

func (Strip) Transform(v string) string { return strings.TrimSpace(v) }
