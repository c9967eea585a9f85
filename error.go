package ar

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingGlobalHeader indicates that the archive file is invalid because its global
	// header is missing (i.e., because the file is shorter than 8 bytes).
	ErrMissingGlobalHeader = errors.New("ar: missing global header")

	// ErrInvalidGlobalHeader indicates that the archive file is invalid because its global
	// header is malformed (i.e., not the string "!<arch>\n").
	ErrInvalidGlobalHeader = errors.New("ar: invalid global header")

	// ErrBuilderClosed indicates a call on a GnuBuilder after Close.
	ErrBuilderClosed = errors.New("ar: builder is closed")
)

// ErrFieldOverflow indicates that a header field's value needs more printed digits than the
// fixed number of character columns the field occupies on the wire.
type ErrFieldOverflow struct {
	// Field is the name of the offending header field.
	Field string

	// Value is the field's value, formatted in the radix the field is encoded in.
	Value string

	// Digits is the number of columns the field occupies.
	Digits int
}

func (e *ErrFieldOverflow) Error() string {
	return fmt.Sprintf("ar: header field %s: value `%s` exceeds %d characters", e.Field, e.Value, e.Digits)
}

// ErrNameTableRequired indicates that a member's identifier is too long for the inline name
// field but was not registered for the extended name table when the builder was constructed.
type ErrNameTableRequired struct {
	Name string
}

func (e *ErrNameTableRequired) Error() string {
	return fmt.Sprintf("ar: identifier '%s' exceeds %d bytes and has no name table entry", e.Name, MAX_INLINE_NAME_LEN)
}

// ErrBodySize indicates that a member's data source yielded a different number of bytes than
// its header declared.
type ErrBodySize struct {
	Name string
	Want uint64
	Got  uint64
}

func (e *ErrBodySize) Error() string {
	return fmt.Sprintf("ar: archive member '%s': header size %d but body was %d bytes", e.Name, e.Want, e.Got)
}

// ErrStringTable indicates a problem with the extended name table in a GNU-format archive.
type ErrStringTable struct {
	Err error
}

func (e *ErrStringTable) Error() string {
	return fmt.Sprintf("ar: string table: %s", e.Err)
}

func (e *ErrStringTable) Unwrap() error {
	return e.Err
}

// ErrFileName indicates a problem with the file name in one of the archive's file headers.
type ErrFileName struct {
	Name string
	Err  error
}

func (e *ErrFileName) Error() string {
	return fmt.Sprintf("ar: archive member '%s': %s", e.Name, e.Err)
}

func (e *ErrFileName) Unwrap() error {
	return e.Err
}
