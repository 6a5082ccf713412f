package provider

import (
	"errors"
	"fmt"
)

// Error kinds. Each is terminal for the extraction it occurs in; match with
// errors.Is.
var (
	ErrFetch                 = errors.New("fetch failed")
	ErrNotFound              = errors.New("table not found")
	ErrMalformedTable        = errors.New("malformed table")
	ErrMalformedField        = errors.New("malformed field")
	ErrUnknownTeam           = errors.New("unknown team")
	ErrAmbiguousAugmentation = errors.New("ambiguous augmentation")
	ErrInvalidArgument       = errors.New("invalid argument")
)

// FetchError is returned for any non-success response, or for a request
// that never got one (StatusCode 0, Err set). It is never retried by the
// extraction pipeline.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s: %v", ErrFetch, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: %s returned %d", ErrFetch, e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFetch) hold for *FetchError.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}
