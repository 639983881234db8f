// Package transformer defines the per-cell transformation contract and the
// column-keyed registry the pipeline consults while projecting rows.
package transformer

// Transformer maps one cell value to another. Implementations must be total:
// an input they cannot handle is returned unchanged rather than reported as
// an error.
type Transformer interface {
	Transform(value string) string
}

// Func adapts a plain function to the Transformer interface.
type Func func(string) string

func (f Func) Transform(v string) string { return f(v) }

// Chain applies transformers left to right.
type Chain []Transformer

func (c Chain) Transform(v string) string {
	for _, t := range c {
		v = t.Transform(v)
	}
	return v
}

// Registry maps a column name to the transformer applied to its cells. Each
// column holds at most one transformer; registering again replaces it.
//
// A Registry is not safe for concurrent mutation. It may be read from many
// goroutines once registration is complete.
type Registry map[string]Transformer

// Register installs t for column, replacing any previous entry. A nil t
// removes the column from the registry.
func (r Registry) Register(column string, t Transformer) {
	if t == nil {
		delete(r, column)
		return
	}
	r[column] = t
}

// Lookup returns the transformer registered for column.
func (r Registry) Lookup(column string) (Transformer, bool) {
	t, ok := r[column]
	return t, ok
}

// Columns returns the registered column names in no particular order.
func (r Registry) Columns() []string {
	out := make([]string, 0, len(r))
	for c := range r {
		out = append(out, c)
	}
	return out
}
