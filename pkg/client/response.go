package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Response wraps an HTTP response. Error statuses are not turned into
// errors automatically; callers opt in through EnsureSuccess.
type Response struct {
	*http.Response
}

// EnsureSuccess returns a *StatusError when the status is 400 or above.
func (r *Response) EnsureSuccess() error {
	if r.StatusCode >= 400 {
		return &StatusError{
			StatusCode: r.StatusCode,
			Status:     r.Status,
			URL:        r.requestURL(),
		}
	}
	return nil
}

// Bytes reads the full body and closes it.
func (r *Response) Bytes() ([]byte, error) {
	defer r.Body.Close()

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return data, nil
}

// JSON decodes the body into v and closes it. An invalid body yields a
// *DecodeError.
func (r *Response) JSON(v any) error {
	data, err := r.Bytes()
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return &DecodeError{URL: r.requestURL(), Err: err}
	}
	return nil
}

// Close releases the body without reading it.
func (r *Response) Close() error {
	io.Copy(io.Discard, r.Body)
	return r.Body.Close()
}

func (r *Response) requestURL() string {
	if r.Request != nil && r.Request.URL != nil {
		return r.Request.URL.String()
	}
	return ""
}
