package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvselect/internal/transformer"
)

func TestCaseAndStrip_TableDriven(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tr   transformer.Transformer
		in   string
		want string
	}{
		{"upper_ascii", Upper{}, "hello", "HELLO"},
		{"upper_mixed", Upper{}, "World", "WORLD"},
		{"upper_empty", Upper{}, "", ""},
		{"upper_unicode", Upper{}, "straße élan", "STRASSE ÉLAN"},
		{"lower_ascii", Lower{}, "HELLO", "hello"},
		{"lower_email", Lower{}, "BOB@Y.COM", "bob@y.com"},
		{"lower_empty", Lower{}, "", ""},
		{"lower_unicode", Lower{}, "ÉCOLE", "école"},
		{"strip_both_ends", Strip{}, "  hello  ", "hello"},
		{"strip_tabs_newlines", Strip{}, "\t hi \n", "hi"},
		{"strip_keeps_interior", Strip{}, "  a  b  ", "a  b"},
		{"strip_empty", Strip{}, "", ""},
		{"strip_only_space", Strip{}, "   ", ""},
		{"identity", Identity{}, " Mixed Case ", " Mixed Case "},
		{"title", Title{}, "new YORK city", "New York City"},
		{"title_empty", Title{}, "", ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.tr.Transform(tc.in))
		})
	}
}

func TestBuiltins_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"", " ", "abc", "ABC", "  Mixed Case  ", "\tTabbed\n", "straße", "İstanbul",
		"ǅemal", "a b", "  Ünïcödé  ", "123-456",
	}
	trs := map[string]transformer.Transformer{
		"upper":     Upper{},
		"lower":     Lower{},
		"strip":     Strip{},
		"normalize": Normalize{},
		"fold":      FoldAccents{},
	}

	for name, tr := range trs {
		for _, in := range inputs {
			once := tr.Transform(in)
			twice := tr.Transform(once)
			assert.Equalf(t, once, twice, "%s not idempotent for %q", name, in)
		}
	}
}

func TestPhoneFormatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"5551234567", "(555) 123-4567"},
		{"555-123-4567", "(555) 123-4567"},
		{"(555) 123 4567", "(555) 123-4567"},
		{"12345", "12345"},
		{"+1 555 123 4567", "+1 555 123 4567"},
		{"", ""},
		{"not a phone", "not a phone"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, PhoneFormatter{}.Transform(tc.in), "input %q", tc.in)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tr   Truncate
		in   string
		want string
	}{
		{"within_limit", Truncate{Max: 10, Suffix: "..."}, "short", "short"},
		{"exact_limit", Truncate{Max: 5, Suffix: "..."}, "exact", "exact"},
		{"over_limit", Truncate{Max: 20, Suffix: "..."}, "abcdefghijklmnopqrstuvwxyz", "abcdefghijklmnopq..."},
		{"runes_not_bytes", Truncate{Max: 4, Suffix: "…"}, "žluťoučký", "žlu…"},
		{"max_below_suffix", Truncate{Max: 2, Suffix: "..."}, "abcdef", "ab"},
		{"no_suffix", Truncate{Max: 3}, "abcdef", "abc"},
		{"zero", Truncate{Max: 0, Suffix: "..."}, "abc", ""},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.tr.Transform(tc.in))
		})
	}
}

func TestPrefixSuffixDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "USER-42", Prefix{Value: "USER-"}.Transform("42"))
	assert.Equal(t, "USER-", Prefix{Value: "USER-"}.Transform(""))
	assert.Equal(t, "42kg", Suffix{Value: "kg"}.Transform("42"))

	d := Default{Value: DefaultValue}
	assert.Equal(t, "N/A", d.Transform(""))
	assert.Equal(t, "N/A", d.Transform("   "))
	assert.Equal(t, "x", d.Transform("x"))
}

func TestNormalizeAndFold(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "foo bar", Normalize{}.Transform(" foo"+nbspace+"bar "))
	assert.Equal(t, "foo", Normalize{}.Transform(nbspace+"foo"+nbspace))
	assert.Equal(t, "Prilis zlutoucky", FoldAccents{}.Transform("Příliš žluťoučký"))
	assert.Equal(t, "plain", FoldAccents{}.Transform("plain"))
}

type mapParams map[string]any

func (m mapParams) String(k, def string) string {
	if s, ok := m[k].(string); ok {
		return s
	}
	return def
}

func (m mapParams) Int(k string, def int) int {
	if n, ok := m[k].(int); ok {
		return n
	}
	return def
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, k := range Kinds() {
		if k == "prefix" || k == "suffix" || k == "truncate" {
			continue
		}
		tr, err := New(k, nil)
		require.NoErrorf(t, err, "kind %s", k)
		require.NotNil(t, tr)
	}

	tr, err := New("upper", nil)
	require.NoError(t, err)
	assert.Equal(t, "ABC", tr.Transform("abc"))

	tr, err = New("prefix", mapParams{"prefix": "ID-"})
	require.NoError(t, err)
	assert.Equal(t, "ID-7", tr.Transform("7"))

	_, err = New("prefix", nil)
	assert.Error(t, err)

	tr, err = New("truncate", mapParams{"max_length": 5})
	require.NoError(t, err)
	assert.Equal(t, "ab...", tr.Transform("abcdefgh"))

	_, err = New("truncate", nil)
	assert.Error(t, err)

	tr, err = New("default", mapParams{"value": "-"})
	require.NoError(t, err)
	assert.Equal(t, "-", tr.Transform(""))

	_, err = New("reverse", nil)
	assert.ErrorContains(t, err, "unknown transform kind")

	assert.True(t, Known("trim"))
	assert.True(t, Known("phone"))
	assert.False(t, Known("reverse"))
}
