package httpclient

import (
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/cjjwisniewski/seeker-functions/pkg/errors"
)

// ParseResponseError reads the body of a non-2xx HTTP response from an
// external service (Discord, the marketplace) and translates it into an
// AppError that preserves the status semantics. The body is truncated to a
// short snippet for the error message and fully consumed and closed.
//
// The caller should only invoke this when resp.StatusCode indicates an error.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10)) // 4 KB snippet
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}
	snippet := string(bodyBytes)
	message := fmt.Sprintf("%s: status %d: %s", serviceName, resp.StatusCode, snippet)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(serviceName, snippet)
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidInput(message)
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Unauthorized(message)
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.Forbidden(message)
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.RateLimited(message)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return &apperrors.AppError{
			Code:    "SERVICE_UNAVAILABLE",
			Message: message,
			Status:  http.StatusServiceUnavailable,
			Err:     apperrors.ErrServiceUnavail,
		}
	case resp.StatusCode >= 500:
		return fmt.Errorf("%s server error (%d): %s", serviceName, resp.StatusCode, snippet)
	default:
		return &apperrors.AppError{
			Code:    "UPSTREAM_ERROR",
			Message: message,
			Status:  resp.StatusCode,
		}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
