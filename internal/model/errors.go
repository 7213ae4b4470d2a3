package model

import "errors"

// Order validation errors. Callers match them with errors.Is.
var (
	ErrInvalidSide       = errors.New("invalid side")
	ErrInvalidInstrument = errors.New("invalid instrument")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidPrice      = errors.New("invalid price")
)
