package audit

import "errors"

var (
	ErrStartAfterEnd = errors.New("start date cannot be later than end date")
	ErrInvalidDate   = errors.New("invalid date value")
)
