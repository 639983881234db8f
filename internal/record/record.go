// Package record holds the in-memory shape of a parsed delimited document.
package record

// Record is one logical row keyed by column name.
type Record map[string]string

// Values returns the cells of r in the order given by columns. A column that
// is missing from r yields "".
func (r Record) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = r[c]
	}
	return out
}

// Document is a fully materialized table: the header row plus every data
// row in input order.
type Document struct {
	Header []string
	Rows   []Record
}

