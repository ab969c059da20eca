package post

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned by Update when the id is not in the store.
	ErrNotFound = errors.New("post: not found")
	// ErrPersistence marks a failed write of the post list to its slot.
	ErrPersistence = errors.New("post: persistence failed")
)

// ValidationErrors maps a field name to its error message.
type ValidationErrors map[string]string

// ValidationError rejects an Input before the store is touched.
type ValidationError struct {
	Fields ValidationErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, e.Fields[name])
	}
	return "post: invalid input: " + strings.Join(msgs, "; ")
}

// PersistenceError wraps the backend error from a failed write. The
// in-memory change it belongs to has already been applied.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("post: persist %q: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrPersistence) match.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
