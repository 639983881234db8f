package httpds

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
)

// Source is a remote input fetched with a single GET.
type Source struct {
	client *Client
	url    string
}

// NewSource binds url to client.
func NewSource(client *Client, url string) *Source {
	return &Source{client: client, url: url}
}

// Open fetches the URL and returns the response body. 404 and 410 map to
// fs.ErrNotExist, 401 and 403 to fs.ErrPermission; any other non-2xx status
// is an error as well.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.url, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return resp.Body, nil
	}
	_ = resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return nil, fmt.Errorf("get %s: %s: %w", s.url, resp.Status, fs.ErrNotExist)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("get %s: %s: %w", s.url, resp.Status, fs.ErrPermission)
	default:
		return nil, fmt.Errorf("get %s: unexpected status %s", s.url, resp.Status)
	}
}
