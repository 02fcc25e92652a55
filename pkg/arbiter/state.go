package arbiter

import "fmt"

// State is everything the arbitration loop remembers between cycles (the
// gesture tallies are kept by the gesture poller the loop owns). It is never
// persisted.
type State struct {
	// SuppressWakeOnce makes the next wake check discard its detection. It
	// is set when a mailbox trigger commits, so a wake word uttered while
	// the GUI was used does not open a second session.
	SuppressWakeOnce bool

	// SkipNextWake commits a WakeWord at the next wake check without asking
	// the detector (e.g. to continue a conversation).
	SkipNextWake bool

	// LastSignalError is the error the wake-word signal returned on the
	// previous cycle, empty if it succeeded.
	LastSignalError string

	Cycles uint64
}

func (s State) String() string {
	return fmt.Sprintf("cycles:%d suppressWakeOnce:%v skipNextWake:%v", s.Cycles, s.SuppressWakeOnce, s.SkipNextWake)
}
