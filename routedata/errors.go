package routedata

import "errors"

var (
	// ErrMissingInput is returned when no base track was supplied, or it has no points.
	ErrMissingInput = errors.New("missing required input")

	// ErrParse wraps a malformed source file.
	ErrParse = errors.New("parse failure")

	// ErrInvalidSplitMarkers is returned when a split request has no numeric, positive marker.
	ErrInvalidSplitMarkers = errors.New("invalid split markers")
)
