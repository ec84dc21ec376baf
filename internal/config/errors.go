package config

import (
	"errors"
	"fmt"
)

// Kind identifies which startup invariant failed.
type Kind int

const (
	KindSampleRateOutOfRange Kind = iota + 1
	KindPinConflict
	KindTimeoutOutOfRange
	KindMissingRequiredFile
	KindInvalidValue
)

var (
	ErrSampleRateOutOfRange = errors.New("sample rate out of range")
	ErrPinConflict          = errors.New("gpio pin conflict")
	ErrTimeoutOutOfRange    = errors.New("api timeout out of range")
	ErrMissingRequiredFile  = errors.New("required file missing")
	ErrInvalidValue         = errors.New("invalid configuration value")
)

func (k Kind) String() string {
	switch k {
	case KindSampleRateOutOfRange:
		return "SampleRateOutOfRange"
	case KindPinConflict:
		return "PinConflict"
	case KindTimeoutOutOfRange:
		return "TimeoutOutOfRange"
	case KindMissingRequiredFile:
		return "MissingRequiredFile"
	case KindInvalidValue:
		return "InvalidValue"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindSampleRateOutOfRange:
		return ErrSampleRateOutOfRange
	case KindPinConflict:
		return ErrPinConflict
	case KindTimeoutOutOfRange:
		return ErrTimeoutOutOfRange
	case KindMissingRequiredFile:
		return ErrMissingRequiredFile
	default:
		return ErrInvalidValue
	}
}

// ConfigError is a violated configuration invariant.
//
// Field names the offending setting. For KindPinConflict, Roles holds the two
// colliding roles in declaration order. For KindMissingRequiredFile, Path is
// the file that was expected.
type ConfigError struct {
	Kind    Kind
	Field   string
	Roles   []string
	Path    string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	return e.Message
}

// Is matches the sentinel for e.Kind.
func (e *ConfigError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
