package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoClientSelected blocks a submission before any request is made
	ErrNoClientSelected = errors.New("no client selected")
	// ErrQueryInFlight is returned while a previous submission is outstanding
	ErrQueryInFlight = errors.New("a cost query is already running")
	// ErrSetupRequired is returned when environments still need access setup
	ErrSetupRequired = errors.New("cost access setup required")
	// ErrSetupIncomplete is returned by a recheck that still finds environments without access
	ErrSetupIncomplete = errors.New("cost access setup incomplete")
)

// AccessDeniedError reports the environments that lack cost-read access
type AccessDeniedError struct {
	Environments []string
	Err          error
}

func (e *AccessDeniedError) Error() string {
	msg := fmt.Sprintf("missing cost read access for %s", strings.Join(e.Environments, ", "))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AccessDeniedError) Unwrap() error {
	return e.Err
}

// AsAccessDenied extracts an AccessDeniedError from err's chain
func AsAccessDenied(err error) (*AccessDeniedError, bool) {
	var denied *AccessDeniedError
	if errors.As(err, &denied) {
		return denied, true
	}
	return nil, false
}
