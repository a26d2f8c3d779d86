package cdma

import (
	"errors"
	"fmt"
)

// Sentinel errors for the precondition checks performed by the core functions.
var (
	ErrEmptyInput     = errors.New("empty input")
	ErrInvalidSymbol  = errors.New("invalid symbol")
	ErrInvalidSize    = errors.New("size must be a positive power of 2")
	ErrNoSignals      = errors.New("no signals to combine")
	ErrLengthMismatch = errors.New("signal length mismatch")
	ErrChunkAlignment = errors.New("signal length is not a multiple of the code length")
)

// SizeError reports a Walsh matrix size that is not a positive power of two
type SizeError struct {
	Size int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("invalid walsh matrix size %d: %v", e.Size, ErrInvalidSize)
}

func (e *SizeError) Unwrap() error { return ErrInvalidSize }

// SymbolError reports a character other than '0' or '1' in a bit string
type SymbolError struct {
	Position int
	Symbol   rune
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%v %q at position %d", ErrInvalidSymbol, e.Symbol, e.Position)
}

func (e *SymbolError) Unwrap() error { return ErrInvalidSymbol }

// LengthMismatchError reports an encoded signal whose length differs from the first one
type LengthMismatchError struct {
	Index int
	Want  int
	Got   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%v: signal %d has %d chips, expected %d", ErrLengthMismatch, e.Index, e.Got, e.Want)
}

func (e *LengthMismatchError) Unwrap() error { return ErrLengthMismatch }

// ChunkAlignmentError reports a combined signal that cannot be split into whole code-length chunks
type ChunkAlignmentError struct {
	Length    int
	ChunkSize int
}

func (e *ChunkAlignmentError) Error() string {
	return fmt.Sprintf("%v: length %d, code length %d", ErrChunkAlignment, e.Length, e.ChunkSize)
}

func (e *ChunkAlignmentError) Unwrap() error { return ErrChunkAlignment }
