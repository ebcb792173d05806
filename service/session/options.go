package session

import (
	"time"

	"github.com/elC0mpa/cost-doctor/service/anonymize"
	"github.com/elC0mpa/cost-doctor/service/query"
)

// WithBuilder replaces the default query builder
func WithBuilder(b *query.Builder) Option {
	return func(s *session) {
		s.builder = b
	}
}

// WithClock replaces time.Now for snapshots and key presses
func WithClock(now func() time.Time) Option {
	return func(s *session) {
		s.now = now
	}
}

// WithIDGenerator replaces the snapshot ID generator
func WithIDGenerator(newID func() string) Option {
	return func(s *session) {
		s.newID = newID
	}
}

// WithDetectorOptions configures the anonymization key sequence
func WithDetectorOptions(opts ...anonymize.DetectorOption) Option {
	return func(s *session) {
		s.detectorOptions = append(s.detectorOptions, opts...)
	}
}

// WithAnonymization sets the initial anonymization flag
func WithAnonymization(enabled bool) Option {
	return func(s *session) {
		s.anonymization.Set(enabled)
	}
}
