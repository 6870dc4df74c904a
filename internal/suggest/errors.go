package suggest

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDraft        = errors.New("invalid draft")
	ErrMalformedSuggestion = errors.New("malformed suggestion")
	ErrStaleSuggestion     = errors.New("stale suggestion")
)

// InvalidDraftError reports a draft with nothing to infer from.
type InvalidDraftError struct {
	Msg string
}

func (e *InvalidDraftError) Error() string {
	if e == nil || e.Msg == "" {
		return ErrInvalidDraft.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidDraft, e.Msg)
}

func (e *InvalidDraftError) Unwrap() error { return ErrInvalidDraft }

// MalformedSuggestionError reports an inference response that is not a
// mapping at all. Got names the Go type that arrived instead.
type MalformedSuggestionError struct {
	Got string
}

func (e *MalformedSuggestionError) Error() string {
	if e == nil || e.Got == "" {
		return ErrMalformedSuggestion.Error()
	}
	return fmt.Sprintf("%s: expected a mapping, got %s", ErrMalformedSuggestion, e.Got)
}

func (e *MalformedSuggestionError) Unwrap() error { return ErrMalformedSuggestion }
