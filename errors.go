package deskgraph

import "errors"

// Validation errors. Every one of them is returned by the offending call and
// leaves the scene exactly as it was before the call.
var (
	// ErrDuplicateKindMismatch is returned when an id is re-added with a
	// different kind.
	ErrDuplicateKindMismatch = errors.New("element id exists with a different kind")

	// ErrCyclicContainer is returned when a container assignment would make an
	// element its own ancestor.
	ErrCyclicContainer = errors.New("container chain would be cyclic")

	// ErrInvalidArity is returned for array properties of the wrong length.
	ErrInvalidArity = errors.New("invalid array length")

	// ErrUnknownReference is returned when a container or combine operand
	// names an element that does not exist.
	ErrUnknownReference = errors.New("unknown element reference")

	// ErrInvalidValue is returned when a property value cannot be coerced to
	// the property's type.
	ErrInvalidValue = errors.New("invalid property value")
)
