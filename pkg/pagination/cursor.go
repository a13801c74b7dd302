package pagination

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/danelimjoco/2025-external-rest-practice/pkg/client"
)

// Prometheus metrics for pagination.
var pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "restclient_pages_fetched_total",
	Help: "Total pages fetched by pagination cursors",
})

// Cursor is a lazy, finite, non-restartable iterator over the items of a
// paged list endpoint. The first empty page is terminal: once observed, no
// further request is ever issued.
type Cursor struct {
	client *client.Client
	url    string
	params url.Values

	page int
	buf  []json.RawMessage
	done bool
	err  error
}

// New creates a cursor for the given endpoint. The base query parameters
// are copied, so the caller's map is never mutated.
func New(c *client.Client, rawURL string, params url.Values) *Cursor {
	copied := url.Values{}
	for key, values := range params {
		copied[key] = append([]string(nil), values...)
	}

	return &Cursor{
		client: c,
		url:    rawURL,
		params: copied,
		page:   1,
	}
}

// Next returns the next item in server order. The second return value is
// false when the sequence is exhausted. Any error is terminal for the
// cursor.
func (cur *Cursor) Next(ctx context.Context) (json.RawMessage, bool, error) {
	if cur.err != nil {
		return nil, false, cur.err
	}

	for len(cur.buf) == 0 {
		if cur.done {
			return nil, false, nil
		}
		if err := cur.fetchPage(ctx); err != nil {
			cur.err = err
			return nil, false, err
		}
	}

	item := cur.buf[0]
	cur.buf = cur.buf[1:]
	return item, true, nil
}

// Collect drains the cursor into a slice. Items yielded before an error are
// returned alongside it.
func (cur *Cursor) Collect(ctx context.Context) ([]json.RawMessage, error) {
	var items []json.RawMessage
	for {
		item, ok, err := cur.Next(ctx)
		if err != nil {
			return items, err
		}
		if !ok {
			return items, nil
		}
		items = append(items, item)
	}
}

// fetchPage requests the current page and buffers its items.
func (cur *Cursor) fetchPage(ctx context.Context) error {
	params := url.Values{}
	for key, values := range cur.params {
		params[key] = values
	}
	params.Set("page", strconv.Itoa(cur.page))

	resp, err := cur.client.Get(ctx, cur.url, &client.RequestOptions{Query: params})
	if err != nil {
		return err
	}
	if err := resp.EnsureSuccess(); err != nil {
		resp.Close()
		return err
	}

	// A body that is not a JSON array is a decode error, never a loop.
	var items []json.RawMessage
	if err := resp.JSON(&items); err != nil {
		return err
	}

	pagesFetchedTotal.Inc()
	log.Debug().
		Str("endpoint", cur.url).
		Int("page", cur.page).
		Int("items", len(items)).
		Msg("Fetched page")

	if len(items) == 0 {
		cur.done = true
		return nil
	}

	cur.buf = items
	cur.page++
	return nil
}
