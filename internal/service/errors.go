package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validation errors. All of them are recoverable: the dialog state stays
// unchanged and the user is asked to retry.
var (
	ErrIntervalOutOfRange = errors.New("reminder interval out of range")
	ErrTopicEmpty         = errors.New("study topic is empty")
	ErrTopicTooLong       = errors.New("study topic too long")
	ErrDurationOutOfRange = errors.New("study duration out of range")
	ErrNoIndices          = errors.New("no interest indices given")
)

// InvalidIndexError reports every interest index outside the catalog range.
type InvalidIndexError struct {
	Indices []int
}

func (e *InvalidIndexError) Error() string {
	parts := make([]string, len(e.Indices))
	for i, idx := range e.Indices {
		parts[i] = strconv.Itoa(idx)
	}
	return fmt.Sprintf("invalid interest indices: %s", strings.Join(parts, ", "))
}
