package query

import (
	"fmt"
	"time"

	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service/preset"
)

// NewBuilder returns a builder with the default query: last month, daily, grouped by service
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		now:         time.Now,
		preset:      preset.LastMonth,
		granularity: model.GranularityDaily,
		grouping:    []model.DimensionRef{model.NewDimensionRef(model.DimensionServiceName)},
	}
	for _, opt := range opts {
		opt(b)
	}
	if _, ok := preset.Lookup(b.preset); !ok {
		b.preset = preset.LastMonth
	}
	b.period = mustResolve(b.preset, b.now())
	return b
}

// SetPreset selects a preset and leaves custom mode
func (b *Builder) SetPreset(key preset.Key) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	period, err := preset.Resolve(key, b.now())
	if err != nil {
		return err
	}
	b.preset = key
	b.custom = false
	b.period = period
	return nil
}

// EnableCustom switches to custom mode keeping the current interval
func (b *Builder) EnableCustom() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.custom {
		b.period = b.currentPeriod()
	}
	b.custom = true
	b.preset = ""
}

// SetCustomRange sets an explicit interval and clears the preset selection
func (b *Builder) SetCustomRange(from, to time.Time) error {
	from = model.StartOfDay(from)
	to = model.EndOfDay(to)
	if from.After(to) {
		return ErrInvalidRange
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.custom = true
	b.preset = ""
	b.period = model.TimePeriod{From: from, To: to}
	return nil
}

// SetGranularity changes the granularity. Consumers disable calendar views when it becomes None.
func (b *Builder) SetGranularity(g model.Granularity) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch g {
	case model.GranularityNone, model.GranularityDaily:
		b.granularity = g
		return nil
	}
	return fmt.Errorf("unknown granularity %q", g)
}

// ToggleDimension adds the dimension if absent and removes it if present
func (b *Builder) ToggleDimension(name model.Dimension) error {
	name, err := model.ParseDimension(string(name))
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, g := range b.grouping {
		if g.Name == name {
			b.grouping = append(b.grouping[:i:i], b.grouping[i+1:]...)
			return nil
		}
	}
	b.grouping = append(b.grouping, model.NewDimensionRef(name))
	return nil
}

// Serialize freezes the query. Presets are resolved against the clock on every call.
func (b *Builder) Serialize() model.CostQuerySpec {
	b.mu.RLock()
	defer b.mu.RUnlock()
	grouping := make([]model.DimensionRef, len(b.grouping))
	copy(grouping, b.grouping)

	return model.CostQuerySpec{
		Kind:        queryKind,
		Timeframe:   queryTimeframe,
		TimePeriod:  b.currentPeriod(),
		Granularity: b.granularity,
		Aggregation: model.Aggregation{
			Metric:   defaultMetric,
			Function: defaultFunction,
		},
		Grouping: grouping,
	}
}

// Granularity returns the current granularity
func (b *Builder) Granularity() model.Granularity {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.granularity
}

// CalendarEnabled reports whether per-day views make sense for the current query
func (b *Builder) CalendarEnabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.granularity != model.GranularityNone
}

// Preset returns the selected preset, if any
func (b *Builder) Preset() (preset.Key, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.custom || b.preset == "" {
		return "", false
	}
	return b.preset, true
}

// IsCustom reports whether custom mode is active
func (b *Builder) IsCustom() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.custom
}

// Grouping returns a copy of the grouping dimensions
func (b *Builder) Grouping() []model.DimensionRef {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.DimensionRef, len(b.grouping))
	copy(out, b.grouping)
	return out
}

// HasDimension reports whether the dimension is currently grouped
func (b *Builder) HasDimension(name model.Dimension) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return containsDimension(b.grouping, name)
}

func (b *Builder) currentPeriod() model.TimePeriod {
	if b.custom {
		return b.period
	}
	return mustResolve(b.preset, b.now())
}

func mustResolve(key preset.Key, now time.Time) model.TimePeriod {
	period, err := preset.Resolve(key, now)
	if err != nil {
		panic(err)
	}
	return period
}

func containsDimension(grouping []model.DimensionRef, name model.Dimension) bool {
	for _, g := range grouping {
		if g.Name == name {
			return true
		}
	}
	return false
}
