package query

import (
	"errors"
	"sync"
	"time"

	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service/preset"
)

const (
	queryKind       = "Usage"
	queryTimeframe  = "Custom"
	defaultMetric   = "Cost"
	defaultFunction = "Sum"
)

// ErrInvalidRange is returned when a custom range ends before it starts
var ErrInvalidRange = errors.New("invalid date range: from is after to")

// Builder assembles the query an operator is editing. A preset and custom mode are mutually exclusive.
// It is safe for concurrent use.
type Builder struct {
	mu          sync.RWMutex
	now         func() time.Time
	preset      preset.Key
	custom      bool
	period      model.TimePeriod
	granularity model.Granularity
	grouping    []model.DimensionRef
}

// Option customizes a Builder
type Option func(*Builder)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// WithPreset selects the initial preset
func WithPreset(key preset.Key) Option {
	return func(b *Builder) {
		b.preset = key
	}
}

// WithGranularity selects the initial granularity
func WithGranularity(g model.Granularity) Option {
	return func(b *Builder) {
		b.granularity = g
	}
}

// WithGrouping replaces the initial grouping dimensions
func WithGrouping(dims ...model.Dimension) Option {
	return func(b *Builder) {
		b.grouping = nil
		for _, d := range dims {
			if !containsDimension(b.grouping, d) {
				b.grouping = append(b.grouping, model.NewDimensionRef(d))
			}
		}
	}
}
