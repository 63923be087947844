// Package client talks to a running annodiffd.
package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nicolagi/annodiff/internal/annotate"
	"github.com/nicolagi/annodiff/internal/server"
	"github.com/pkg/errors"
)

// StatusError is returned for responses other than 200 OK. Body is the
// server's explanation, e.g., "invalid mode".
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

type Client struct {
	base string
	hc   *http.Client
}

// New returns a client for the server at baseURL, e.g.,
// "http://127.0.0.1:3000". A nil hc means http.DefaultClient.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		base: strings.TrimSuffix(baseURL, "/"),
		hc:   hc,
	}
}

// Diff asks the server to compare a and b.
func (c *Client) Diff(ctx context.Context, a, b string, mode annotate.Granularity) (differs bool, report string, err error) {
	q := url.Values{}
	q.Set("a", base64.StdEncoding.EncodeToString([]byte(a)))
	q.Set("b", base64.StdEncoding.EncodeToString([]byte(b)))
	q.Set("mode", mode.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/?"+q.Encode(), nil)
	if err != nil {
		return false, "", errors.Wrap(err, "client.Diff")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return false, "", errors.Wrap(err, "client.Diff")
	}
	defer func() {
		// Ignore error closing a fully read body.
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, "", errors.Wrap(err, "client.Diff: reading body")
	}
	if resp.StatusCode != http.StatusOK {
		return false, "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if string(body) == server.NoDifference {
		return false, "", nil
	}
	return true, string(body), nil
}
