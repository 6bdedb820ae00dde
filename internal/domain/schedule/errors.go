package schedule

import "errors"

// Sentinel kinds for schedule errors.
var (
	ErrInvalidEndWeek = errors.New("end week out of range")
)
