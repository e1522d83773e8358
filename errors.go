package tvp

import (
	"errors"
	"fmt"
	"reflect"
)

// Common registration and invocation error values
var (
	// ErrAlreadyRegistered is returned when a (type sequence, procedure name)
	// key is registered a second time. Callers performing lazy registration
	// should treat it as "another caller just finished registering" and
	// re-resolve instead of failing.
	ErrAlreadyRegistered = errors.New("procedure already registered")

	// ErrNotRegistered is returned when no descriptor exists for a type
	// sequence and auto-registration cannot apply.
	ErrNotRegistered = errors.New("procedure not registered")

	// ErrNilType is returned when a record type is nil.
	ErrNilType = errors.New("record type is nil")

	// ErrNoTypes is returned when a registration or invocation names no
	// record types.
	ErrNoTypes = errors.New("at least one record type is required")

	// ErrNoArguments is returned when an invocation supplies no arguments.
	ErrNoArguments = errors.New("at least one argument is required")
)

// UnsupportedTypeError reports a Go type outside the fixed scalar kind table.
// There is deliberately no fallback coercion: an unmapped type fails at
// registration time rather than guessing a wire type.
type UnsupportedTypeError struct {
	Type reflect.Type
}

// Error implements the error interface
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("no SQL parameter kind for Go type %s", e.Type)
}

// TypeMismatchError reports a positional argument whose element type does not
// match the table type declared at that position.
type TypeMismatchError struct {
	Want string
	Got  string
}

// Error implements the error interface
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("argument type %s does not match declared record type %s", e.Got, e.Want)
}

// IsAlreadyRegistered returns true if the error is ErrAlreadyRegistered
func IsAlreadyRegistered(err error) bool {
	return errors.Is(err, ErrAlreadyRegistered)
}

// IsNotRegistered returns true if the error is ErrNotRegistered
func IsNotRegistered(err error) bool {
	return errors.Is(err, ErrNotRegistered)
}

// IsTypeMismatch returns true if the error is a TypeMismatchError
func IsTypeMismatch(err error) bool {
	var tme *TypeMismatchError
	return errors.As(err, &tme)
}

// IsUnsupportedType returns true if the error is an UnsupportedTypeError
func IsUnsupportedType(err error) bool {
	var ute *UnsupportedTypeError
	return errors.As(err, &ute)
}
