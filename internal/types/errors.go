package types

import "errors"

var (
	// ErrInsufficientData means a series is shorter than the period it was asked for.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidInput covers malformed candles, non-finite values and bad parameters.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstream wraps any failure reported by an exchange collaborator.
	ErrUpstream = errors.New("upstream failure")
	// ErrDivisionByZero is returned when sizing against a zero or negative ATR.
	ErrDivisionByZero = errors.New("division by zero")
)
