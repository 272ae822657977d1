package tracker

import (
	"errors"
	"fmt"
)

// Standard errors
var (
	ErrAuthentication    = errors.New("tracker: authentication failed, check the API token")
	ErrWorkspaceNotFound = errors.New("tracker: workspace not found")
)

// RequestError reports a non-success HTTP status from the tracking service.
type RequestError struct {
	Endpoint string
	Status   int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("tracker: request to %s failed with status %d", e.Endpoint, e.Status)
}
