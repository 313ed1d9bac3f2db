package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/imroc/req/v3"

	"github.com/desertthunder/albumsync/internal/shared"
)

// APIError is the error body returned by the photo service.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s - %s (status %d)", e.Code, e.Message, e.Status)
}

// Unwrap lets callers match any API failure with [shared.ErrRemoteOperation].
func (e *APIError) Unwrap() error {
	return shared.ErrRemoteOperation
}

// IsNotFound reports whether err is an [APIError] with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// handleAPIError converts a transport error or error response into an error wrapping [shared.ErrRemoteOperation].
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("%w: %s: %w", shared.ErrRemoteOperation, operation, requestErr)
	}

	// got a response, but api returned an error
	if resp.IsErrorState() {
		if apiErr, ok := resp.ErrorResult().(*APIError); ok && (apiErr.Code != "" || apiErr.Message != "") {
			apiErr.Status = resp.StatusCode
			return fmt.Errorf("%s: %w", operation, apiErr)
		}

		return fmt.Errorf("%s: %w", operation, &APIError{
			Code:    "E_UNKNOWN",
			Message: http.StatusText(resp.StatusCode),
			Status:  resp.StatusCode,
		})
	}

	return nil
}
