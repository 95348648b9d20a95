// Package lex provides the whitespace-tolerant token scanners shared by the
// dice, pool, and percentile grammars.
//
// Every scanner consumes leading whitespace, then attempts to match its token
// at the start of the input. On success it returns the remainder; on failure
// it returns an *Error carrying the unconsumed input.
package lex

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error is a parse failure. Remaining holds the input that was not consumed
// when the failure occurred.
type Error struct {
	Msg       string
	Remaining string
}

// Errorf builds an *Error positioned at remaining.
func Errorf(remaining, format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...), Remaining: remaining}
}

// Error implements error.
func (e *Error) Error() string {
	rest := strings.TrimSpace(e.Remaining)
	if rest == "" {
		return e.Msg + " at end of input"
	}
	return fmt.Sprintf("%s at %q", e.Msg, rest)
}

// Sign is the sign connecting a term to the expression before it.
type Sign int

const (
	// Plus adds the term.
	Plus Sign = iota
	// Minus subtracts the term.
	Minus
)

// String returns "+" or "-".
func (s Sign) String() string {
	if s == Minus {
		return "-"
	}
	return "+"
}

// IsSpace reports whether b is one of the whitespace bytes the grammars skip.
func IsSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// IsDigit reports whether b is an ASCII decimal digit.
func IsDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// IsLetter reports whether b is an ASCII letter.
func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Whitespace consumes leading spaces, tabs, carriage returns, and line feeds.
//
// Postcondition: the result has no leading whitespace.
func Whitespace(s string) string {
	i := 0
	for i < len(s) && IsSpace(s[i]) {
		i++
	}
	return s[i:]
}

// Uint32 consumes a run of one or more decimal digits and parses it as an
// unsigned 32-bit integer.
//
// Postcondition: returns the value and the remainder, or an *Error when the
// digit run is empty or overflows.
func Uint32(s string) (uint32, string, error) {
	s = Whitespace(s)
	i := 0
	for i < len(s) && IsDigit(s[i]) {
		i++
	}
	if i == 0 {
		return 0, s, Errorf(s, "expected a number")
	}
	v, err := strconv.ParseUint(s[:i], 10, 32)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, s, Errorf(s, "number %s is too large", s[:i])
		}
		return 0, s, Errorf(s, "invalid number %s", s[:i])
	}
	return uint32(v), s[i:], nil
}

// SignPrefix consumes an optional leading '+' or '-'.
//
// Postcondition: ok is false and s is returned without leading whitespace when
// no sign is present.
func SignPrefix(s string) (sign Sign, rest string, ok bool) {
	s = Whitespace(s)
	if s == "" {
		return Plus, s, false
	}
	switch s[0] {
	case '+':
		return Plus, s[1:], true
	case '-':
		return Minus, s[1:], true
	}
	return Plus, s, false
}

// Word consumes one or more ASCII letters.
func Word(s string) (string, string, error) {
	s = Whitespace(s)
	i := 0
	for i < len(s) && IsLetter(s[i]) {
		i++
	}
	if i == 0 {
		return "", s, Errorf(s, "expected a name")
	}
	return s[:i], s[i:], nil
}

// Tag consumes the literal tag if the input starts with it.
func Tag(s, tag string) (string, bool) {
	s = Whitespace(s)
	if strings.HasPrefix(s, tag) {
		return s[len(tag):], true
	}
	return s, false
}

// PeekDigit reports whether the next non-whitespace byte is a digit.
func PeekDigit(s string) bool {
	s = Whitespace(s)
	return s != "" && IsDigit(s[0])
}

// PeekLetter reports whether the next non-whitespace byte is a letter.
func PeekLetter(s string) bool {
	s = Whitespace(s)
	return s != "" && IsLetter(s[0])
}

// End fails unless only whitespace remains.
func End(s string) error {
	s = Whitespace(s)
	if s != "" {
		return Errorf(s, "unexpected input")
	}
	return nil
}
