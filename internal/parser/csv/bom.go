package csv

import "bytes"

var utf8BOM = []byte("\uFEFF")

// stripBOM removes a leading UTF-8 byte order mark. It is dropped before
// encoding/csv sees the input so a quoted first header cell still parses.
func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, utf8BOM)
}
