package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Mukul-Bhagat/AttendanceMark-sub003/core"
)

// StatusError carries the HTTP status of a failed exchange along with the
// backend's message, when it sent one.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string

	sentinel error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s returned %d", e.Method, e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return e.sentinel }

// errorFromResponse maps a non-2xx response to a *StatusError. Unauthorized
// responses carry core.ErrUnauthorized so callers can errors.Is on it.
func errorFromResponse(req *http.Request, resp *http.Response) (error, bool) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil, false
	}

	statusErr := &StatusError{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Message:    messageFromBody(resp.Body),
	}
	if resp.StatusCode == http.StatusUnauthorized {
		statusErr.sentinel = core.ErrUnauthorized
	}
	return statusErr, true
}

// messageFromBody pulls the backend's error message out of its JSON error
// envelope, tolerating both {"error": ...} and {"msg": ...} shapes.
func messageFromBody(body io.Reader) string {
	var envelope struct {
		Error string `json:"error"`
		Msg   string `json:"msg"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 4096)).Decode(&envelope); err != nil {
		return ""
	}
	if envelope.Error != "" {
		return envelope.Error
	}
	return envelope.Msg
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, statusCode int) bool {
	se, ok := err.(*StatusError)
	return ok && se.StatusCode == statusCode
}

// retryable reports whether a failed GET may be reissued.
func retryable(err error) bool {
	se, ok := err.(*StatusError)
	return ok && se.StatusCode >= 500
}

// credentialError rewrites rejections of a credential check to
// core.ErrInvalidCredentials; everything else passes through.
func credentialError(err error) error {
	se, ok := err.(*StatusError)
	if !ok {
		return err
	}
	switch se.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		se.sentinel = core.ErrInvalidCredentials
	}
	return se
}

func decodeResponseAsJSON(resp *http.Response, output interface{}) error {
	if output == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(output); err != nil {
		return fmt.Errorf("decoding response from %s: %w", resp.Request.URL, err)
	}
	return nil
}
