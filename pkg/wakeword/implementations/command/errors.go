package command

import (
	"fmt"
)

// ErrExited means the detector process is gone and no longer processes
// frames.
type ErrExited struct {
	Err error
}

func (e ErrExited) Error() string {
	return fmt.Sprintf("the wake-word detector exited: %v", e.Err)
}

func (e ErrExited) Unwrap() error {
	return e.Err
}
