// Package httpsend holds the request/response plumbing shared by the HTTP
// notification transports.
package httpsend

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout applies when a transport is configured without one.
const DefaultTimeout = 5 * time.Second

// maxErrorBody caps how much of a vendor error response is kept.
const maxErrorBody = 4 << 10

// StatusError is returned for non-2xx vendor responses.
type StatusError struct {
	Vendor     string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s", e.Vendor, e.Status)
	}
	return fmt.Sprintf("%s %s: %s", e.Vendor, e.Status, e.Body)
}

// Client returns hc, or a new client with timeout (DefaultTimeout when zero).
func Client(hc *http.Client, timeout time.Duration) *http.Client {
	if hc != nil {
		return hc
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Do sends req and always consumes and closes the response body.
func Do(hc *http.Client, req *http.Request, vendor string) error {
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", vendor, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readFailure(resp, vendor)
	}
	return drain(resp, vendor)
}

func drain(resp *http.Response, vendor string) error {
	_, copyErr := io.Copy(io.Discard, resp.Body)
	closeErr := resp.Body.Close()

	switch {
	case copyErr != nil && closeErr != nil:
		return errors.Join(
			fmt.Errorf("drain %s response body: %w", vendor, copyErr),
			fmt.Errorf("close response body: %w", closeErr),
		)
	case copyErr != nil:
		return fmt.Errorf("drain %s response body: %w", vendor, copyErr)
	case closeErr != nil:
		return fmt.Errorf("close response body: %w", closeErr)
	}
	return nil
}

func readFailure(resp *http.Response, vendor string) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	closeErr := resp.Body.Close()

	statusErr := &StatusError{
		Vendor:     vendor,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
	if readErr != nil || closeErr != nil {
		return errors.Join(statusErr, readErr, closeErr)
	}
	return statusErr
}
