// Package pagination walks paged list endpoints lazily, one page at a
// time. A Cursor issues GET requests through the rate-limited client with
// an incrementing page parameter and yields individual items until the
// server returns an empty page. Pages are fetched strictly in order; there
// is no prefetching, and a cursor is not restartable.
package pagination
