package feeds

import "sync"

// deleteState is the two-step confirmation state for destructive deletes.
type deleteState int

const (
	deleteIdle deleteState = iota
	deleteArmed
	deleteInFlight
)

// DeleteConfirm guards feed deletion behind an explicit arm-then-confirm
// sequence: Confirm without a prior Arm is a no-op, arming twice does not
// stack, and Cancel returns to idle without touching the API.
type DeleteConfirm struct {
	mu     sync.Mutex
	state  deleteState
	feedID string
}

// Arm marks a feed for deletion. Re-arming (same or different feed)
// replaces the pending target.
func (d *DeleteConfirm) Arm(feedID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == deleteInFlight {
		return
	}
	d.state = deleteArmed
	d.feedID = feedID
}

// Cancel disarms a pending delete.
func (d *DeleteConfirm) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == deleteArmed {
		d.state = deleteIdle
		d.feedID = ""
	}
}

// Armed reports whether feedID is the armed target.
func (d *DeleteConfirm) Armed(feedID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == deleteArmed && d.feedID == feedID
}

// confirm transitions armed → in-flight and returns the target. The second
// return is false when there is nothing armed, which makes a stray confirm
// click harmless.
func (d *DeleteConfirm) confirm() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != deleteArmed {
		return "", false
	}
	d.state = deleteInFlight
	return d.feedID, true
}

// finish returns the machine to idle after the delete call resolves.
func (d *DeleteConfirm) finish() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = deleteIdle
	d.feedID = ""
}
