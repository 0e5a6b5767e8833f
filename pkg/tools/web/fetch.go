// Package web provides the fetch_url_content tool.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/hamzaessahbaoui/agentic-toolkit/toolkit"
)

// DefaultMaxBytes bounds the content returned to the model.
const DefaultMaxBytes = 16 << 10

// ErrURLRequired is returned when the URL argument is empty.
var ErrURLRequired = errors.New("url_required")

// Fetcher performs GET requests on behalf of the model.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher creates a Fetcher. A nil client means http.DefaultClient; maxBytes <= 0 means DefaultMaxBytes.
func NewFetcher(client *http.Client, maxBytes int64) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{client: client, maxBytes: maxBytes}
}

// FetchURL returns up to maxBytes of the body at args.URL. Non-2xx statuses are errors.
func (f *Fetcher) FetchURL(ctx context.Context, args FetchURLArgs) (FetchURLResponse, error) {
	log.Ctx(ctx).Debug().Str("url", args.URL).Msg("fetch url")

	if args.URL == "" {
		return FetchURLResponse{}, ErrURLRequired
	}
	u, err := url.Parse(args.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return FetchURLResponse{}, fmt.Errorf("unsupported url %q", args.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return FetchURLResponse{}, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return FetchURLResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return FetchURLResponse{}, fmt.Errorf("GET %s: %s", u, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return FetchURLResponse{}, err
	}
	out := FetchURLResponse{Status: resp.StatusCode}
	if int64(len(body)) > f.maxBytes {
		body, out.Truncated = body[:f.maxBytes], true
	}
	out.Content = string(body)
	return out, nil
}

// Register adds the fetch_url_content tool to tk.
func (f *Fetcher) Register(tk *toolkit.Toolkit) error {
	d, err := toolkit.NewTool("fetch_url_content", "Fetches the content of a web page.", f.FetchURL)
	if err != nil {
		return err
	}
	_, err = tk.Register(d)
	return err
}
