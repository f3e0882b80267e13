// Package forms implements the create and edit forms for vaults and records.
// A form validates locally, submits at most once at a time and keeps its
// values when the server rejects them.
package forms

import (
	"context"
	"errors"
	"sync"

	"github.com/passvault/cli/internal/utils"
)

var (
	// ErrSubmitInProgress is returned when Submit is called while a previous
	// submission has not completed
	ErrSubmitInProgress = errors.New("a submission is already in progress")

	// ErrFormClosed is returned when Submit is called on a dismissed form
	ErrFormClosed = errors.New("form is not open")
)

var defaultValidator = NewValidator()

// Form holds the values of one form of type T
type Form[T any] struct {
	initial   func() T
	validator *Validator

	mu          sync.Mutex
	values      T
	open        bool
	loading     bool
	fieldErrors utils.FieldErrors
	errors      []string
}

// New creates a closed form. initial supplies the values of a blank form.
func New[T any](initial func() T) *Form[T] {
	if initial == nil {
		initial = func() T {
			var zero T
			return zero
		}
	}
	return &Form[T]{
		initial:   initial,
		validator: defaultValidator,
		values:    initial(),
	}
}

// Open shows a blank form
func (f *Form[T]) Open() {
	f.Edit(f.initial())
}

// Edit shows the form prefilled with values
func (f *Form[T]) Edit(values T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = values
	f.open = true
	f.fieldErrors = nil
	f.errors = nil
}

// Dismiss closes the form without submitting
func (f *Form[T]) Dismiss() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.fieldErrors = nil
	f.errors = nil
}

// IsOpen reports whether the form is shown
func (f *Form[T]) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Values returns the current values
func (f *Form[T]) Values() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Set replaces the current values
func (f *Form[T]) Set(values T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = values
}

// Update edits the current values in place
func (f *Form[T]) Update(fn func(*T)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.values)
}

// Validate checks the current values and records the field errors
func (f *Form[T]) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked()
}

func (f *Form[T]) validateLocked() error {
	err := f.validator.Validate(f.values)
	var fieldErrs utils.FieldErrors
	if errors.As(err, &fieldErrs) {
		f.fieldErrors = fieldErrs
		return fieldErrs
	}
	f.fieldErrors = nil
	return err
}

// Loading reports whether a submission is in flight
func (f *Form[T]) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// FieldErrors returns the validation failures of the last Validate or Submit
func (f *Form[T]) FieldErrors() utils.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fieldErrors == nil {
		return nil
	}
	out := make(utils.FieldErrors, len(f.fieldErrors))
	for k, v := range f.fieldErrors {
		out[k] = v
	}
	return out
}

// Errors returns the normalized messages of the last failed submission
func (f *Form[T]) Errors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.errors...)
}

// Submit validates the form and sends it. Invalid values never reach send.
// On success onSuccess runs with the result, then the form closes and
// resets. On failure the form stays open with its values and the
// normalized error messages.
func Submit[T, R any](ctx context.Context, f *Form[T], send func(context.Context, T) (R, error), onSuccess func(R)) error {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	if !f.open {
		f.mu.Unlock()
		return ErrFormClosed
	}
	if err := f.validateLocked(); err != nil {
		f.errors = nil
		f.mu.Unlock()
		return err
	}
	f.loading = true
	f.errors = nil
	values := f.values
	f.mu.Unlock()

	result, err := send(ctx, values)

	f.mu.Lock()
	f.loading = false
	if err != nil {
		f.errors = utils.Normalize(err)
		f.mu.Unlock()
		return err
	}
	f.mu.Unlock()

	if onSuccess != nil {
		onSuccess(result)
	}

	f.mu.Lock()
	f.open = false
	f.values = f.initial()
	f.fieldErrors = nil
	f.mu.Unlock()
	return nil
}
