// Package command encodes accessory indicator commands and writes them to
// a resolved command endpoint.
//
// Each command is a single byte equal to its code. There is no framing or
// checksum.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Code is an accessory indicator command.
type Code uint8

// Command codes.
const (
	Off         Code = 0
	Water       Code = 1
	Balanced    Code = 2
	Unbalanced  Code = 3
	GreatFinish Code = 4
	BadFinish   Code = 5
)

// MaxCode is the highest defined code.
const MaxCode = BadFinish

// ErrInvalidCode is returned for values outside Off..BadFinish.
var ErrInvalidCode = errors.New("invalid command code")

var codeNames = [...]string{
	Off:         "OFF",
	Water:       "WATER",
	Balanced:    "BALANCED",
	Unbalanced:  "UNBALANCED",
	GreatFinish: "GREAT_FINISH",
	BadFinish:   "BAD_FINISH",
}

// String returns the command name, or CODE(n) for undefined values.
func (c Code) String() string {
	if c.Valid() {
		return codeNames[c]
	}
	return fmt.Sprintf("CODE(%d)", uint8(c))
}

// Valid reports whether c is a defined command.
func (c Code) Valid() bool {
	return c <= MaxCode
}

// Encode returns the one-byte wire payload.
func (c Code) Encode() []byte {
	return []byte{byte(c)}
}

// Codes returns every defined code in ascending order.
func Codes() []Code {
	out := make([]Code, 0, int(MaxCode)+1)
	for c := Off; c <= MaxCode; c++ {
		out = append(out, c)
	}
	return out
}

// FromInt converts an integer to a Code.
func FromInt(n int) (Code, error) {
	if n < 0 || n > int(MaxCode) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCode, n)
	}
	return Code(n), nil
}

// Parse accepts a decimal code ("1") or a name ("water", "GREAT_FINISH",
// "great-finish"), case-insensitively.
func Parse(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return FromInt(n)
	}
	name := strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
	for i, cn := range codeNames {
		if cn == name {
			return Code(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCode, s)
}

// Decode parses a one-byte payload.
func Decode(b []byte) (Code, error) {
	if len(b) != 1 {
		return 0, fmt.Errorf("%w: payload length %d", ErrInvalidCode, len(b))
	}
	c := Code(b[0])
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCode, b[0])
	}
	return c, nil
}
