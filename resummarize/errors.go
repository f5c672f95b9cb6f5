package resummarize

import "errors"

var (
	// ErrStoreRequired is returned when a card store is not provided.
	ErrStoreRequired = errors.New("card store required")

	// ErrSummarizerRequired is returned when a summarizer is not provided.
	ErrSummarizerRequired = errors.New("summarizer required")
)
