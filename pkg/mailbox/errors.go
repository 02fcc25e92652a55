package mailbox

import (
	"fmt"
)

type ErrInvalidTable struct {
	Table Table
}

func (e ErrInvalidTable) Error() string {
	return fmt.Sprintf("invalid mailbox table '%s'", e.Table)
}

type ErrMalformedRow struct {
	Table Table
	Err   error
}

func (e ErrMalformedRow) Error() string {
	return fmt.Sprintf("malformed row in table '%s': %v", e.Table, e.Err)
}

func (e ErrMalformedRow) Unwrap() error {
	return e.Err
}
