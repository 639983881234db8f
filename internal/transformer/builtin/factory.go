package builtin

import (
	"fmt"
	"sort"

	"csvselect/internal/transformer"
)

// Params is the read-only view of a transform's options. config.Options
// satisfies it.
type Params interface {
	String(key, def string) string
	Int(key string, def int) int
}

type noParams struct{}

func (noParams) String(_, def string) string { return def }
func (noParams) Int(_ string, def int) int   { return def }

type constructor func(p Params) (transformer.Transformer, error)

var kinds = map[string]constructor{
	"identity":     func(Params) (transformer.Transformer, error) { return Identity{}, nil },
	"uppercase":    func(Params) (transformer.Transformer, error) { return Upper{}, nil },
	"lowercase":    func(Params) (transformer.Transformer, error) { return Lower{}, nil },
	"strip":        func(Params) (transformer.Transformer, error) { return Strip{}, nil },
	"title":        func(Params) (transformer.Transformer, error) { return Title{}, nil },
	"normalize":    func(Params) (transformer.Transformer, error) { return Normalize{}, nil },
	"fold_accents": func(Params) (transformer.Transformer, error) { return FoldAccents{}, nil },
	"phone":        func(Params) (transformer.Transformer, error) { return PhoneFormatter{}, nil },
	"prefix": func(p Params) (transformer.Transformer, error) {
		v := p.String("prefix", "")
		if v == "" {
			return nil, fmt.Errorf("prefix: option %q is required", "prefix")
		}
		return Prefix{Value: v}, nil
	},
	"suffix": func(p Params) (transformer.Transformer, error) {
		v := p.String("suffix", "")
		if v == "" {
			return nil, fmt.Errorf("suffix: option %q is required", "suffix")
		}
		return Suffix{Value: v}, nil
	},
	"truncate": func(p Params) (transformer.Transformer, error) {
		n := p.Int("max_length", -1)
		if n < 0 {
			return nil, fmt.Errorf("truncate: option %q must be a non-negative integer", "max_length")
		}
		return Truncate{Max: n, Suffix: p.String("suffix", DefaultEllipsis)}, nil
	},
	"default": func(p Params) (transformer.Transformer, error) {
		return Default{Value: p.String("value", DefaultValue)}, nil
	},
}

// aliases accept the short names used on the command line.
var aliases = map[string]string{
	"upper": "uppercase",
	"lower": "lowercase",
	"trim":  "strip",
}

// New builds the transformer registered under kind. p may be nil for kinds
// that take no options.
func New(kind string, p Params) (transformer.Transformer, error) {
	if a, ok := aliases[kind]; ok {
		kind = a
	}
	ctor, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown transform kind %q", kind)
	}
	if p == nil {
		p = noParams{}
	}
	return ctor(p)
}

// Known reports whether kind (or one of its aliases) names a transformer.
func Known(kind string) bool {
	if _, ok := aliases[kind]; ok {
		return true
	}
	_, ok := kinds[kind]
	return ok
}

// Kinds lists the canonical transform kinds in sorted order.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
