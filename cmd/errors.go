package cmd

import (
	"fmt"

	sharederrors "github.com/khanhnv2901/fdscan/internal/shared/errors"
)

// ListFileError indicates the target list could not be opened or read.
type ListFileError struct {
	Path string
	Err  error
}

func (e *ListFileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cannot read target list %s", e.Path)
	}
	return fmt.Sprintf("cannot read target list %s: %v", e.Path, e.Err)
}

func (e *ListFileError) Unwrap() []error {
	if e.Err == nil {
		return []error{sharederrors.ErrListUnreadable}
	}
	return []error{sharederrors.ErrListUnreadable, e.Err}
}
