package telescope

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIndex is returned when a baseline or frequency index is out of range
	ErrInvalidIndex = errors.New("invalid index")

	// ErrInvalidGeometryIndex is returned when an array unit index (e.g. a cylinder) is out of range
	ErrInvalidGeometryIndex = errors.New("invalid geometry index")

	// ErrUnimplementedCapability is returned when a telescope variant lacks a required capability
	ErrUnimplementedCapability = errors.New("unimplemented capability")

	// ErrShapeMismatch is returned when baseline and frequency indices cannot be broadcast together
	ErrShapeMismatch = errors.New("index shape mismatch")
)

// IndexError describes an out of range baseline or frequency index
type IndexError struct {
	Axis  string
	Index int
	Limit int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0, %d)", e.Axis, e.Index, e.Limit)
}

func (e *IndexError) Unwrap() error {
	return ErrInvalidIndex
}
