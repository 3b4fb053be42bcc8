package corpus

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested detail does not exist in the source.
var ErrNotFound = errors.New("not found")

// FetchError reports a failed load of a single keyed detail. It is scoped
// to that key; other keys and cached entries are unaffected.
type FetchError struct {
	Kind string // "index", "chapter", "work" or "passage"
	Key  string
	Err  error
}

func (e *FetchError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("could not load %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("could not load %s %s: %v", e.Kind, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func fetchErr(kind, key string, err error) error {
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Kind: kind, Key: key, Err: err}
}
