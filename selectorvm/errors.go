package selectorvm

import "github.com/pkg/errors"

// SelectorError is returned from Compile when a selector cannot be
// turned into a program (spec.md §7 "Compilation errors"). It never
// surfaces from the VM's execution path.
type SelectorError struct {
	Selector string
	cause    error
}

func (e *SelectorError) Error() string {
	return errors.Wrapf(e.cause, "selector %q", e.Selector).Error()
}

func (e *SelectorError) Unwrap() error {
	return e.cause
}

func newSelectorError(selector string, cause error) *SelectorError {
	return &SelectorError{Selector: selector, cause: cause}
}

func selectorErrorf(selector, format string, args ...interface{}) *SelectorError {
	return newSelectorError(selector, errors.Errorf(format, args...))
}
