package models

import "errors"

var (
	ErrUnknownDay    = errors.New("unknown day")
	ErrUnknownShift  = errors.New("unknown shift")
	ErrUnknownStatus = errors.New("unknown preference status")
)
