package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
)

// APIError is a non-2xx response from the catalog API.
//
// It matches the status sentinels in [shared] with [errors.Is]; a 401 to a token-bearing request also matches
// [shared.ErrTokenExpired].
type APIError struct {
	Status         int
	Method         string
	Path           string
	Problem        *models.Problem
	SessionExpired bool
}

func (e *APIError) Error() string {
	msg := http.StatusText(e.Status)
	if e.Problem != nil {
		if e.Problem.Detail != "" {
			msg = e.Problem.Detail
		} else if e.Problem.Title != "" {
			msg = e.Problem.Title
		}
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// Is reports whether target is one of the sentinels this response maps to.
func (e *APIError) Is(target error) bool {
	if target == shared.ErrAPIRequest {
		return true
	}
	if e.SessionExpired && target == shared.ErrTokenExpired {
		return true
	}
	return target == statusError(e.Status)
}

// Detail returns the server's explanation, or the status text when none was sent.
func (e *APIError) Detail() string {
	if e.Problem != nil && e.Problem.Detail != "" {
		return e.Problem.Detail
	}
	return http.StatusText(e.Status)
}

func statusError(status int) error {
	switch {
	case status == http.StatusBadRequest:
		return shared.ErrBadRequest
	case status == http.StatusUnauthorized:
		return shared.ErrUnauthorized
	case status == http.StatusNotFound:
		return shared.ErrNotFound
	case status == http.StatusConflict:
		return shared.ErrConflict
	case status == http.StatusUnprocessableEntity:
		return shared.ErrUnprocessable
	case status == http.StatusServiceUnavailable:
		return shared.ErrServiceUnavailable
	case status >= 400 && status < 500:
		return shared.ErrClient
	case status >= 500:
		return shared.ErrServer
	default:
		return shared.ErrAPIRequest
	}
}

// Describe maps an error to a short message suitable for the views.
func Describe(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, shared.ErrTokenExpired):
		return "Your session has expired. Please log in again."
	case errors.Is(err, shared.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrUnauthorized):
		return "You need to log in first."
	case errors.Is(err, shared.ErrNotFound):
		return "Not found."
	case errors.Is(err, shared.ErrServiceUnavailable):
		return "The catalog service is unavailable. Try again later."
	case errors.Is(err, shared.ErrNetwork):
		return "Could not reach the catalog service."
	case errors.As(err, &apiErr):
		return apiErr.Detail()
	default:
		return err.Error()
	}
}
