// Package stream consumes a single streaming GET response lazily, in
// bounded chunks, without buffering the whole body in memory. A Stream has
// an explicit lifecycle: Open, Next until exhausted, Close. The underlying
// connection is released on every exit path, including early abandonment.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danelimjoco/2025-external-rest-practice/pkg/client"
)

// DefaultChunkSize is the nominal chunk size; the last chunk of a body may
// be shorter.
const DefaultChunkSize = 8192

// Prometheus metrics for streaming.
var (
	streamChunksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restclient_stream_chunks_total",
		Help: "Total chunks yielded by stream consumers",
	})

	streamBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restclient_stream_bytes_total",
		Help: "Total bytes yielded by stream consumers",
	})
)

// Option configures Open.
type Option func(*options)

type options struct {
	chunkSize int
	header    http.Header
}

// WithChunkSize overrides the chunk size.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithHeader adds headers to the streaming request.
func WithHeader(header http.Header) Option {
	return func(o *options) { o.header = header }
}

// Stream is a lazy, finite, non-restartable sequence of byte chunks from
// one streaming GET.
type Stream struct {
	body   io.ReadCloser
	buf    []byte
	closed bool
}

// Open issues the streaming request. A non-2xx status fails with a
// *client.StatusError before anything is yielded, and the connection is
// released. Streaming bypasses the client's pacer: it is one long-lived
// request, so the caller passes the shared transport handle directly.
func Open(ctx context.Context, hc *http.Client, rawURL string, opts ...Option) (*Stream, error) {
	o := options{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(&o)
	}
	if hc == nil {
		hc = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, values := range o.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		var netErr net.Error
		return nil, &client.TransportError{
			URL:     rawURL,
			Timeout: errors.As(err, &netErr) && netErr.Timeout(),
			Err:     err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &client.StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        rawURL,
		}
	}

	return &Stream{
		body: resp.Body,
		buf:  make([]byte, o.chunkSize),
	}, nil
}

// Next returns the next chunk of the body. Every chunk except possibly the
// last is exactly the configured chunk size. The second return value is
// false once the body is exhausted; the connection is released at that
// point without a separate Close call.
func (s *Stream) Next() ([]byte, bool, error) {
	if s.closed {
		return nil, false, nil
	}

	n, err := io.ReadFull(s.body, s.buf)

	var chunk []byte
	if n > 0 {
		chunk = make([]byte, n)
		copy(chunk, s.buf[:n])
		streamChunksTotal.Inc()
		streamBytesTotal.Add(float64(n))
	}

	switch {
	case err == nil:
		return chunk, true, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		closeErr := s.Close()
		if n > 0 {
			return chunk, true, nil
		}
		return nil, false, closeErr
	default:
		s.Close()
		return nil, false, fmt.Errorf("read stream: %w", err)
	}
}

// Close releases the connection. It is idempotent, and abandoning a stream
// before exhaustion must always be paired with Close.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
