// Package flw implements the four-letter-word administrative command core:
// the name/code codec, the sixteen commands, the whitelisted command
// registry and the one-shot connection protocol that serves them.
package flw

import (
	"errors"
	"fmt"
)

// ErrInvalidCommandName is returned by ToCode for names whose length is not
// exactly four characters. Command names are compile-time constants, so
// hitting this outside of startup is a programming error.
var ErrInvalidCommandName = errors.New("four-letter command name must be exactly 4 characters")

// ToCode packs a four-character command name into its 32-bit code, first
// character in the most significant byte.
func ToCode(name string) (int32, error) {
	if len(name) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCommandName, name)
	}
	return int32(name[0])<<24 | int32(name[1])<<16 | int32(name[2])<<8 | int32(name[3]), nil
}

// MustCode is ToCode for the fixed command name constants; it panics on an
// invalid name.
func MustCode(name string) int32 {
	code, err := ToCode(name)
	if err != nil {
		panic(err)
	}
	return code
}

// ToName unpacks a command code back into its four-character name, most
// significant byte first.
func ToName(code int32) string {
	return string([]byte{
		byte(code >> 24),
		byte(code >> 16),
		byte(code >> 8),
		byte(code),
	})
}
