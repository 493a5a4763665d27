// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves every item of a paginated handbook collection.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/handbook-sync/internal/httputil"
	"github.com/pdiddy/handbook-sync/pkg/types"
)

// totalPagesHeader carries the collection's page count on every page response.
const totalPagesHeader = "X-WP-TotalPages"

// ErrEmptyCollection is returned when a fetch succeeds but yields no items.
var ErrEmptyCollection = errors.New("collection is empty")

// FetchError reports a failed page request. StatusCode is zero when the
// request never produced a response.
type FetchError struct {
	Page       int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching page %d: HTTP %d", e.Page, e.StatusCode)
	}
	return fmt.Sprintf("fetching page %d: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher pages through a collection endpoint.
type Fetcher struct {
	client   *httputil.Client
	pageSize int
}

// New returns a Fetcher that requests types.PageSize items per page.
func New(client *httputil.Client) *Fetcher {
	return &Fetcher{client: client, pageSize: types.PageSize}
}

// wireItem mirrors the JSON shape of one collection element.
type wireItem struct {
	ID     int64  `json:"id"`
	Parent int64  `json:"parent"`
	Link   string `json:"link"`
	Slug   string `json:"slug"`
	Title  struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Content struct {
		Rendered string `json:"rendered"`
	} `json:"content"`
}

// FetchAll requests page 1, reads the total page count from its headers,
// then requests pages 2..N one at a time. Items are returned in page order,
// then in within-page order. Any failed page aborts the fetch with a
// *FetchError; nothing is retried. Zero items yields ErrEmptyCollection.
func (f *Fetcher) FetchAll(ctx context.Context, endpoint string) ([]types.Item, error) {
	items, totalPages, err := f.fetchPage(ctx, endpoint, 1)
	if err != nil {
		return nil, err
	}

	for page := 2; page <= totalPages; page++ {
		pageItems, _, err := f.fetchPage(ctx, endpoint, page)
		if err != nil {
			return nil, err
		}
		items = append(items, pageItems...)
	}

	if len(items) == 0 {
		return nil, ErrEmptyCollection
	}
	return items, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, endpoint string, page int) ([]types.Item, int, error) {
	reqURL, err := pageURL(endpoint, page, f.pageSize)
	if err != nil {
		return nil, 0, &FetchError{Page: page, Err: err}
	}

	resp, err := f.client.Get(ctx, reqURL)
	if err != nil {
		return nil, 0, &FetchError{Page: page, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, &FetchError{
			Page:       page,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var raw []wireItem
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, 0, &FetchError{Page: page, Err: fmt.Errorf("parsing response: %w", err)}
	}

	items := make([]types.Item, len(raw))
	for i, w := range raw {
		items[i] = types.Item{
			ID:      w.ID,
			Parent:  w.Parent,
			Link:    w.Link,
			Slug:    w.Slug,
			Title:   w.Title.Rendered,
			Content: w.Content.Rendered,
		}
	}

	return items, totalPages(resp.Header), nil
}

// totalPages reads the page count header. A missing or malformed value
// means the collection fits on one page.
func totalPages(h http.Header) int {
	n, err := strconv.Atoi(strings.TrimSpace(h.Get(totalPagesHeader)))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func pageURL(endpoint string, page, pageSize int) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint %q: %w", endpoint, err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
