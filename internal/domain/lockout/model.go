package lockout

import "time"

// Attempt tracks login failures for one username. A row exists only while
// there is failure history since the last successful login; success deletes
// it. LockUntil nil means no lock was ever set on this cycle.
type Attempt struct {
	Username    string
	FailedCount int
	LockUntil   *time.Time
}

type LockStatus struct {
	Locked    bool
	Remaining time.Duration
}
