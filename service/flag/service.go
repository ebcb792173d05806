package flag

import (
	"fmt"
	"strings"
	"time"

	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service/preset"
	"github.com/elC0mpa/cost-doctor/service/query"
)

func NewService(now func() time.Time) *service {
	if now == nil {
		now = time.Now
	}
	return &service{now: now}
}

// NewBuilder returns a query builder configured from the parsed flags. Empty flags keep the builder defaults.
func (s *service) NewBuilder(flags model.Flags) (*query.Builder, error) {
	builder := query.NewBuilder(query.WithClock(s.now))

	if err := s.Apply(builder, flags); err != nil {
		return nil, err
	}
	return builder, nil
}

// Apply edits an existing builder. Nothing is changed when a flag is invalid.
func (s *service) Apply(builder *query.Builder, flags model.Flags) error {
	granularity, err := parseGranularity(flags.Granularity, builder.Granularity())
	if err != nil {
		return err
	}

	dimensions, err := ParseDimensions(flags.Dimensions)
	if err != nil {
		return err
	}

	var from, to time.Time
	if flags.HasCustomRange() {
		if from, to, err = parseRange(flags.From, flags.To); err != nil {
			return err
		}
		if from.After(to) {
			return query.ErrInvalidRange
		}
	} else if flags.Preset != "" {
		if _, ok := preset.Lookup(preset.Key(flags.Preset)); !ok {
			return fmt.Errorf("unknown preset %q", flags.Preset)
		}
	}

	if flags.HasCustomRange() {
		if err := builder.SetCustomRange(from, to); err != nil {
			return err
		}
	} else if flags.Preset != "" {
		if err := builder.SetPreset(preset.Key(flags.Preset)); err != nil {
			return err
		}
	}

	if err := builder.SetGranularity(granularity); err != nil {
		return err
	}

	if dimensions != nil {
		replaceGrouping(builder, dimensions)
	}
	return nil
}

// ParseDimensions accepts repeated and comma separated values. A nil result means no dimension was given.
func ParseDimensions(values []string) ([]model.Dimension, error) {
	var dims []model.Dimension
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			dim, err := model.ParseDimension(part)
			if err != nil {
				return nil, err
			}
			dims = append(dims, dim)
		}
	}
	return dims, nil
}

func parseGranularity(value string, fallback model.Granularity) (model.Granularity, error) {
	if value == "" {
		return fallback, nil
	}
	return model.ParseGranularity(value)
}

func parseRange(fromValue, toValue string) (time.Time, time.Time, error) {
	if fromValue == "" || toValue == "" {
		return time.Time{}, time.Time{}, ErrIncompleteRange
	}

	from, err := time.Parse(DateLayout, fromValue)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse from date %q: %w", fromValue, err)
	}

	to, err := time.Parse(DateLayout, toValue)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse to date %q: %w", toValue, err)
	}
	return from, to, nil
}

// replaceGrouping toggles the builder's dimensions until they match dims, keeping dims' order for new ones
func replaceGrouping(builder *query.Builder, dims []model.Dimension) {
	wanted := make(map[model.Dimension]bool, len(dims))
	for _, d := range dims {
		wanted[d] = true
	}

	for _, g := range builder.Grouping() {
		if !wanted[g.Name] {
			_ = builder.ToggleDimension(g.Name)
		}
	}
	for _, d := range dims {
		if !builder.HasDimension(d) {
			_ = builder.ToggleDimension(d)
		}
	}
}
