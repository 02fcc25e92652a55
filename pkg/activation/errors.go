package activation

import (
	"fmt"
)

// ErrTransientSignal is a per-cycle failure of a trigger source (store
// unreachable, malformed row, detector hiccup). It is logged and the signal
// is treated as absent.
type ErrTransientSignal struct {
	Source string
	Err    error
}

func (e ErrTransientSignal) Error() string {
	return fmt.Sprintf("transient failure of signal '%s': %v", e.Source, e.Err)
}

func (e ErrTransientSignal) Unwrap() error {
	return e.Err
}

// ErrDeviceFailure means the audio input is gone; the loop cannot continue.
type ErrDeviceFailure struct {
	Err error
}

func (e ErrDeviceFailure) Error() string {
	return fmt.Sprintf("audio device failure: %v", e.Err)
}

func (e ErrDeviceFailure) Unwrap() error {
	return e.Err
}

// ErrActivationKey means the wake-word engine refused its credential.
type ErrActivationKey struct {
	Reason string
	Err    error
}

func (e ErrActivationKey) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("wake-word engine activation key error: %s", e.Reason)
	}
	return fmt.Sprintf("wake-word engine activation key error: %s: %v", e.Reason, e.Err)
}

func (e ErrActivationKey) Unwrap() error {
	return e.Err
}

// ErrRestartRequested is returned by the arbitration loop when an external
// client asked to restart it (used to recover from audio devices that went
// to sleep).
type ErrRestartRequested struct{}

func (ErrRestartRequested) Error() string {
	return "a restart of the arbitration loop was requested"
}
