package model

// Flags holds the query options given on the command line
type Flags struct {
	// Query shape
	Preset      string
	From        string
	To          string
	Granularity string
	Dimensions  []string

	// Display
	Anonymize bool
	ShowQuery bool
	JSON      bool

	// Tenant override, defaults to the configured client
	Environments []string
}

// HasCustomRange reports whether an explicit date range was requested
func (f Flags) HasCustomRange() bool {
	return f.From != "" || f.To != ""
}
