package lockout

import (
	"errors"
	"sync"
)

// Policy constants.
const (
	// Threshold is the number of consecutive failures that triggers the alarm.
	Threshold = 3

	// AlarmTicks is how long the alarm sounds.
	AlarmTicks = 60
)

// Lockout errors.
var (
	// ErrVerificationFailed reports a rejected credential below the threshold.
	ErrVerificationFailed = errors.New("credential verification failed")

	// ErrLockout reports that the threshold was reached and the round ended.
	ErrLockout = errors.New("retry threshold reached")
)

// Tracker counts consecutive verification failures within one round.
type Tracker struct {
	mu        sync.Mutex
	failures  int
	threshold int

	onChange func(from, to int)
}

// NewTracker creates a tracker. A threshold of zero selects Threshold.
func NewTracker(threshold int) *Tracker {
	if threshold <= 0 {
		threshold = Threshold
	}
	return &Tracker{threshold: threshold}
}

// OnChange registers a callback invoked after the count changes.
func (t *Tracker) OnChange(fn func(from, to int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// RecordFailure increments the count and reports whether the threshold has
// been reached. The count stays at the threshold until Reset.
func (t *Tracker) RecordFailure() bool {
	t.mu.Lock()
	old := t.failures
	if t.failures < t.threshold {
		t.failures++
	}
	reached := t.failures >= t.threshold
	fn, now := t.onChange, t.failures
	t.mu.Unlock()

	if fn != nil && old != now {
		fn(old, now)
	}
	return reached
}

// RecordSuccess clears the count after a correct credential.
func (t *Tracker) RecordSuccess() {
	t.Reset()
}

// Reset clears the count. Call after a success or once the alarm window for
// a reached threshold has elapsed.
func (t *Tracker) Reset() {
	t.mu.Lock()
	old := t.failures
	t.failures = 0
	fn := t.onChange
	t.mu.Unlock()

	if fn != nil && old != 0 {
		fn(old, 0)
	}
}

// Failures returns the current count.
func (t *Tracker) Failures() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures
}

// Threshold returns the configured threshold.
func (t *Tracker) Threshold() int {
	return t.threshold
}

// Reached reports whether the count is at the threshold.
func (t *Tracker) Reached() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures >= t.threshold
}
