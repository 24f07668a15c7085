package composition

import (
	"errors"
	"fmt"
)

// Binder rejections. All of them leave the item list untouched; the view shows
// a transient notification and moves on.
var (
	ErrOutOfStock    = errors.New("item is out of stock")
	ErrDuplicateItem = errors.New("item is already on this invoice")
	ErrMissingPrice  = errors.New("item has no usable price")
)

// ErrBusy blocks a second explicit completion while one is in flight, which
// guards rapid double submission.
var ErrBusy = errors.New("completion already in progress")

// ValidationError is an inline, non-fatal complaint about a step transition
// attempted before the composition has the data it needs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid composition: %s %s", e.Field, e.Reason)
}
