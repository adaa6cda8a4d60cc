package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/mochico/storefront/pkg/errors"
)

const maxErrorBody = 1 << 20

// upstreamError is the error body shape used by most JSON APIs:
// {"error": {"code": "...", "message": "..."}} or {"error": "...", "message": "..."}.
type upstreamError struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// translates it into an AppError.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", upstream, resp.StatusCode, err)
	}

	message := string(body)
	var parsed upstreamError
	if json.Unmarshal(body, &parsed) == nil {
		var nested struct {
			Message string `json:"message"`
		}
		switch {
		case json.Unmarshal(parsed.Error, &nested) == nil && nested.Message != "":
			message = nested.Message
		case parsed.Message != "":
			message = parsed.Message
		case len(parsed.Error) > 0:
			var s string
			if json.Unmarshal(parsed.Error, &s) == nil && s != "" {
				message = s
			}
		}
	}

	return mapStatus(resp.StatusCode, upstream, message)
}

func mapStatus(status int, upstream, message string) error {
	qualified := fmt.Sprintf("%s: %s", upstream, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(upstream, message)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.ServiceUnavailable(fmt.Sprintf("%s rejected credentials (%d)", upstream, status))
	case status == http.StatusTooManyRequests || status >= 500:
		return apperrors.ServiceUnavailable(fmt.Sprintf("%s unavailable (%d): %s", upstream, status, message))
	default:
		return fmt.Errorf("%s returned status %d: %s", upstream, status, message)
	}
}

// IsSuccess reports whether status is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
