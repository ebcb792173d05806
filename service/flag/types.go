package flag

import (
	"errors"
	"time"
)

// DateLayout is the format of --from and --to
const DateLayout = "2006-01-02"

// ErrIncompleteRange is returned when only one end of a custom range is given
var ErrIncompleteRange = errors.New("both from and to are required for a custom range")

type service struct {
	now func() time.Time
}
