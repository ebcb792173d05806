package anonymize

import (
	"sync"
	"time"
)

const (
	// DefaultKey is the key that toggles anonymization when pressed in quick succession
	DefaultKey = "a"
	// DefaultPresses is the number of presses needed inside the window
	DefaultPresses = 3
	// DefaultWindow is the rolling window measured from the first press of a sequence
	DefaultWindow = 2 * time.Second
)

// Timer is a pending reset that can be cancelled
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// State is the session-scoped anonymization flag. It is never persisted.
type State struct {
	mu      sync.RWMutex
	enabled bool
}

// SequenceDetector toggles anonymization after a run of presses of one key
type SequenceDetector struct {
	mu         sync.Mutex
	key        string
	presses    int
	window     time.Duration
	scheduler  Scheduler
	lastPress  []time.Time
	reset      Timer
	generation uint64
	onTrigger  func()
}

// DetectorOption customizes a SequenceDetector
type DetectorOption func(*SequenceDetector)
