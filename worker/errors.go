package worker

import "errors"

var (
	// ErrServiceRequired is returned when no AI service is provided.
	ErrServiceRequired = errors.New("ai service required")

	// ErrInvalidInput is wrapped by every error caused by a malformed bundle.
	ErrInvalidInput = errors.New("invalid task input")

	// ErrGraphUnavailable is returned for graph tasks on a queue built without a graph service.
	ErrGraphUnavailable = errors.New("knowledge graph service not configured")
)
