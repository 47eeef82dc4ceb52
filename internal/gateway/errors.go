package gateway

import (
	"errors"
	"net/http"
)

var (
	ErrImageTooLarge = errors.New("image exceeds the 5 MiB limit")
	ErrEmptyImage    = errors.New("image is empty")
)

// APIError is a non-2xx answer from the backend. Message is the backend's own text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return e.Message
}
