package domain

import "errors"

var (
	// ErrNotFound means a table boundary marker is absent from the report.
	ErrNotFound = errors.New("not found")

	// ErrParse means a year label is not an integer.
	ErrParse = errors.New("parse error")
)
