package anonymize

import (
	"time"
)

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// WithKey changes the activation key
func WithKey(key string) DetectorOption {
	return func(d *SequenceDetector) {
		if key != "" {
			d.key = key
		}
	}
}

// WithPresses changes how many presses trigger a toggle
func WithPresses(n int) DetectorOption {
	return func(d *SequenceDetector) {
		if n > 0 {
			d.presses = n
		}
	}
}

// WithWindow changes the activation window
func WithWindow(window time.Duration) DetectorOption {
	return func(d *SequenceDetector) {
		if window > 0 {
			d.window = window
		}
	}
}

// WithScheduler replaces the real timer, mostly for tests
func WithScheduler(s Scheduler) DetectorOption {
	return func(d *SequenceDetector) {
		d.scheduler = s
	}
}

// NewSequenceDetector calls onTrigger each time the activation sequence completes
func NewSequenceDetector(onTrigger func(), opts ...DetectorOption) *SequenceDetector {
	d := &SequenceDetector{
		key:       DefaultKey,
		presses:   DefaultPresses,
		window:    DefaultWindow,
		scheduler: realScheduler{},
		onTrigger: onTrigger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Press records a key press at the given time and reports whether it completed the sequence.
// Other keys are ignored.
func (d *SequenceDetector) Press(key string, at time.Time) bool {
	if key != d.key {
		return false
	}

	d.mu.Lock()
	if len(d.lastPress) > 0 && at.Sub(d.lastPress[0]) > d.window {
		// the press that falls outside the window starts a new sequence
		d.lastPress = d.lastPress[:0]
	}
	d.lastPress = append(d.lastPress, at)

	triggered := len(d.lastPress) >= d.presses
	if triggered {
		d.lastPress = d.lastPress[:0]
		d.stopResetLocked()
	} else {
		d.scheduleResetLocked()
	}
	onTrigger := d.onTrigger
	d.mu.Unlock()

	if triggered && onTrigger != nil {
		onTrigger()
	}
	return triggered
}

// Pending returns how many presses the current sequence holds
func (d *SequenceDetector) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lastPress)
}

// Stop cancels the pending reset timer
func (d *SequenceDetector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopResetLocked()
}

func (d *SequenceDetector) scheduleResetLocked() {
	d.stopResetLocked()
	gen := d.generation
	d.reset = d.scheduler.AfterFunc(d.window, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.generation != gen {
			return
		}
		d.lastPress = d.lastPress[:0]
		d.reset = nil
	})
}

func (d *SequenceDetector) stopResetLocked() {
	d.generation++
	if d.reset != nil {
		d.reset.Stop()
		d.reset = nil
	}
}
