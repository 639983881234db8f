// Package datasource resolves an input location to a readable stream.
// Local paths and http(s) URLs are supported. Missing inputs are reported
// with errors that match fs.ErrNotExist for both kinds.
package datasource

import (
	"context"
	"io"
	"net/url"
	"strings"

	"csvselect/internal/datasource/file"
	"csvselect/internal/datasource/httpds"
)

// Source is anything that can be opened for reading.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Opener turns a location string into an opened stream.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Resolver is the default Opener. URLs with an http or https scheme are
// fetched with the HTTP client; everything else is a local path.
type Resolver struct {
	HTTP httpds.Config
}

// NewResolver returns a Resolver using cfg for HTTP sources.
func NewResolver(cfg httpds.Config) *Resolver { return &Resolver{HTTP: cfg} }

// Resolve picks the Source implementation for location.
func (r *Resolver) Resolve(location string) Source {
	if isHTTP(location) {
		return httpds.NewSource(httpds.NewClient(r.HTTP), location)
	}
	return file.NewLocal(location)
}

// Open implements Opener.
func (r *Resolver) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	return r.Resolve(location).Open(ctx)
}

func isHTTP(location string) bool {
	u, err := url.Parse(location)
	if err != nil || u.Host == "" {
		return false
	}
	s := strings.ToLower(u.Scheme)
	return s == "http" || s == "https"
}
