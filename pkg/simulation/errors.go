package simulation

import (
	"errors"
	"fmt"

	"github.com/dbehnke/cdma-visualizer/pkg/cdma"
)

// Limit violations reported by the simulator
var (
	ErrTooManyStations = errors.New("too many stations")
	ErrStationTooLong  = errors.New("station data too long")
	ErrSizeTooLarge    = errors.New("walsh matrix size too large")
	ErrUnequalLength   = errors.New("stations must all have the same number of bits")
)

// StationError reports which station (zero-based Index) failed validation
type StationError struct {
	Index int
	Err   error
}

func (e *StationError) Error() string {
	var limitErr *LimitError
	switch {
	case errors.Is(e.Err, ErrStationTooLong) && errors.As(e.Err, &limitErr):
		return fmt.Sprintf("Station %d has too much data (max %d bits).", e.Index+1, limitErr.Limit)
	case errors.Is(e.Err, ErrUnequalLength) && errors.As(e.Err, &limitErr):
		return fmt.Sprintf("Station %d has %d bits but station 1 has %d. All stations must have the same length.",
			e.Index+1, limitErr.Got, limitErr.Limit)
	}
	return fmt.Sprintf("Station %d has invalid data. Please use only 0s and 1s.", e.Index+1)
}

func (e *StationError) Unwrap() error { return e.Err }

// LimitError reports a request exceeding a configured bound
type LimitError struct {
	Err   error
	Limit int
	Got   int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%v: %d exceeds limit of %d", e.Err, e.Got, e.Limit)
}

func (e *LimitError) Unwrap() error { return e.Err }

// IsClientError reports whether err was caused by bad caller input rather
// than an internal failure.
func IsClientError(err error) bool {
	var stationErr *StationError
	var limitErr *LimitError
	switch {
	case errors.As(err, &stationErr), errors.As(err, &limitErr):
		return true
	case errors.Is(err, cdma.ErrEmptyInput), errors.Is(err, cdma.ErrInvalidSymbol), errors.Is(err, cdma.ErrInvalidSize):
		return true
	}
	return false
}
