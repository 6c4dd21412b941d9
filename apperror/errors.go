package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned by stores when a requested record does not exist.
// Collection fetches treat it as an empty result.
var ErrNotFound = errors.New("record not found")

// ValidationError collects field level problems. It blocks a commit or submit.
type ValidationError struct {
	fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{fields: make(map[string][]string)}
}

// Add records a message for the given field.
func (e *ValidationError) Add(field, msg string) {
	e.fields[field] = append(e.fields[field], msg)
}

func (e *ValidationError) Fields() map[string][]string {
	return e.fields
}

func (e *ValidationError) HasErrors() bool {
	return len(e.fields) > 0
}

// OrNil returns e when it holds at least one message.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.fields[k], "; ")))
	}
	return "validation: " + strings.Join(parts, ", ")
}

// Cell identifies one room-night.
type Cell struct {
	RoomID uint      `json:"roomId"`
	Date   time.Time `json:"date"`
}

// Conflict reasons.
const (
	ReasonOccupied = "occupied"
	ReasonClosed   = "closed"
)

// ConflictError reports room-nights that are owned by another booking or
// closed for sale.
type ConflictError struct {
	Reason string
	Cells  []Cell
}

func NewConflictError(reason string, cells ...Cell) *ConflictError {
	return &ConflictError{Reason: reason, Cells: cells}
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Cells))
	for _, c := range e.Cells {
		parts = append(parts, fmt.Sprintf("room %d on %s", c.RoomID, c.Date.Format("2006-01-02")))
	}
	return fmt.Sprintf("conflict (%s): %s", e.Reason, strings.Join(parts, ", "))
}

// TransientError wraps a failed IO call. The operation was abandoned and no
// state was changed.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Op: op, Err: err}
}

func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
