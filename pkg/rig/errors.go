package rig

import "errors"

// Sentinel failures surfaced verbatim as the message of an error-status
// result. The wording is part of the CLI contract.
var (
	ErrNoAnchors     = errors.New("AI did not detect any anchor points")
	ErrNoBones       = errors.New("AI did not detect any bones")
	ErrNoAnimations  = errors.New("AI did not generate any animations")
	ErrNoCorrections = errors.New("AI did not return anchor corrections")
	ErrNoValidBones  = errors.New("No valid bones after validation")
)

// ParseError wraps a JSON decoding failure of a model response, exposing the
// raw parser message to the caller.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "Failed to parse AI response as JSON: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
