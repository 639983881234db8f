package builtin

import (
	"strings"
	"unicode/utf8"
)

// Prefix prepends a fixed string to every value.
type Prefix struct{ Value string }

func (p Prefix) Transform(v string) string { return p.Value + v }

// Suffix appends a fixed string to every value.
type Suffix struct{ Value string }

func (s Suffix) Transform(v string) string { return v + s.Value }

// PhoneFormatter renders ten-digit phone numbers as "(XXX) XXX-XXXX". Any
// value that does not contain exactly ten ASCII digits is returned as is.
type PhoneFormatter struct{}

func (PhoneFormatter) Transform(v string) string {
	digits := make([]byte, 0, 10)
	for i := 0; i < len(v); i++ {
		if c := v[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) != 10 {
		return v
	}
	var b strings.Builder
	b.Grow(14)
	b.WriteByte('(')
	b.Write(digits[:3])
	b.WriteString(") ")
	b.Write(digits[3:6])
	b.WriteByte('-')
	b.Write(digits[6:])
	return b.String()
}

// DefaultEllipsis is the suffix Truncate uses when none is configured.
const DefaultEllipsis = "..."

// Truncate shortens values longer than Max runes so that the result,
// including Suffix, is exactly Max runes long. Values within the limit pass
// through. When Max is not larger than the suffix, the value is cut to Max
// runes without a suffix.
type Truncate struct {
	Max    int
	Suffix string
}

func (t Truncate) Transform(v string) string {
	if t.Max < 0 || utf8.RuneCountInString(v) <= t.Max {
		return v
	}
	sufLen := utf8.RuneCountInString(t.Suffix)
	if t.Max <= sufLen {
		return firstRunes(v, t.Max)
	}
	return firstRunes(v, t.Max-sufLen) + t.Suffix
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// DefaultValue is the replacement Default uses when none is configured.
const DefaultValue = "N/A"

// Default replaces empty or whitespace-only values with Value.
type Default struct{ Value string }

func (d Default) Transform(v string) string {
	if strings.TrimSpace(v) == "" {
		return d.Value
	}
	return v
}
