package domain

import "errors"

var (
	// ErrUnknownDimension is returned when a dimension name has no definition.
	ErrUnknownDimension = errors.New("unknown dimension")

	// ErrTimeColumnMissing marks a year whose sheet has no time-of-day column.
	ErrTimeColumnMissing = errors.New("time-of-day column missing")

	// ErrNoParsableTimes marks a year in which no time-of-day value parses.
	ErrNoParsableTimes = errors.New("no parsable time-of-day values")
)
