package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrAuthRejected means the backend refused the credentials on /login.
	ErrAuthRejected = errors.New("api: credentials rejected")
	// ErrUnauthorized means an authenticated call came back 401.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrNotFound means the task does not exist.
	ErrNotFound = errors.New("api: not found")
)

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	StatusCode int
	Detail     string
}

func (e *HTTPError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Detail)
}

// detailBody matches the {"detail": ...} error body the backend sends.
// detail is either a string or a list of validation entries.
type detailBody struct {
	Detail json.RawMessage `json:"detail"`
}

func readHTTPError(resp *http.Response) *HTTPError {
	e := &HTTPError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return e
	}
	var body detailBody
	if json.Unmarshal(data, &body) != nil || len(body.Detail) == 0 {
		e.Detail = strings.TrimSpace(string(data))
		return e
	}
	var s string
	if json.Unmarshal(body.Detail, &s) == nil {
		e.Detail = s
		return e
	}
	var entries []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(body.Detail, &entries) == nil {
		msgs := make([]string, 0, len(entries))
		for _, en := range entries {
			if en.Msg != "" {
				msgs = append(msgs, en.Msg)
			}
		}
		e.Detail = strings.Join(msgs, "; ")
		return e
	}
	e.Detail = string(body.Detail)
	return e
}
