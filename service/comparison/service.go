package comparison

// NotApplicable marks a percentage change that is undefined because the previous period was zero
const NotApplicable = -999.0

// Change is the period-over-period delta of a cost
type Change struct {
	Difference float64 `json:"difference"`
	Percentage float64 `json:"percentage"`
}

// IsNotApplicable reports whether the percentage is the NotApplicable sentinel
func (c Change) IsNotApplicable() bool {
	return c.Percentage == NotApplicable
}

// Compute returns the difference and signed percentage change from previous to current
func Compute(previous, current float64) Change {
	change := Change{Difference: current - previous}

	switch {
	case previous == 0 && current != 0:
		change.Percentage = NotApplicable
	case previous == 0:
		change.Percentage = 0
	default:
		change.Percentage = (current - previous) / previous * 100
	}

	return change
}
