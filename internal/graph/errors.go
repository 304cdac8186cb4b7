package graph

import "fmt"

// RecordError reports a validation failure for one dataset record.
type RecordError struct {
	Kind  string // "node" or "link"
	Index int
	ID    string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s %d (%s): %v", e.Kind, e.Index, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
