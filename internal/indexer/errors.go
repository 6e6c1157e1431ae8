package indexer

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSource means a configured input directory or file is absent.
	ErrMissingSource = errors.New("missing source")
	// ErrEmptyResult means a mandatory category produced no records although
	// its source existed.
	ErrEmptyResult = errors.New("empty result")
)

// CategoryError attributes a rebuild failure to one category.
type CategoryError struct {
	Category string
	Err      error
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *CategoryError) Unwrap() error {
	return e.Err
}
