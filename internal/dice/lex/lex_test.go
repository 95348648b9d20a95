package lex_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicebot/internal/dice/lex"
)

func TestWhitespace(t *testing.T) {
	assert.Equal(t, "abc ", lex.Whitespace(" \t\r\nabc "))
	assert.Equal(t, "", lex.Whitespace("   "))
	assert.Equal(t, "x", lex.Whitespace("x"))
}

func TestUint32(t *testing.T) {
	v, rest, err := lex.Uint32("  42d6")
	require.NoError(t, err)
	assert.Equal(t, uint32(42), v)
	assert.Equal(t, "d6", rest)
}

func TestUint32_Empty(t *testing.T) {
	_, rest, err := lex.Uint32("  abc")
	require.Error(t, err)
	var lexErr *lex.Error
	require.True(t, errors.As(err, &lexErr))
	assert.Equal(t, "abc", lexErr.Remaining)
	assert.Equal(t, "abc", rest)
}

func TestUint32_Overflow(t *testing.T) {
	_, _, err := lex.Uint32("4294967296")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")

	v, _, err := lex.Uint32("4294967295")
	require.NoError(t, err)
	assert.Equal(t, uint32(4294967295), v)
}

func TestSignPrefix(t *testing.T) {
	sign, rest, ok := lex.SignPrefix(" - 3")
	assert.True(t, ok)
	assert.Equal(t, lex.Minus, sign)
	assert.Equal(t, " 3", rest)

	sign, rest, ok = lex.SignPrefix("+3")
	assert.True(t, ok)
	assert.Equal(t, lex.Plus, sign)
	assert.Equal(t, "3", rest)

	sign, rest, ok = lex.SignPrefix(" 3")
	assert.False(t, ok)
	assert.Equal(t, lex.Plus, sign)
	assert.Equal(t, "3", rest)
}

func TestWord(t *testing.T) {
	w, rest, err := lex.Word(" strength + 2")
	require.NoError(t, err)
	assert.Equal(t, "strength", w)
	assert.Equal(t, " + 2", rest)

	_, _, err = lex.Word("12")
	assert.Error(t, err)
}

func TestTagAndEnd(t *testing.T) {
	rest, ok := lex.Tag("  dh2", "dh")
	assert.True(t, ok)
	assert.Equal(t, "2", rest)

	_, ok = lex.Tag("k2", "dh")
	assert.False(t, ok)

	assert.NoError(t, lex.End(" \n"))
	err := lex.End(" junk")
	require.Error(t, err)
	assert.Equal(t, `unexpected input at "junk"`, err.Error())
}

func TestError_AtEndOfInput(t *testing.T) {
	err := lex.Errorf("", "expected a number")
	assert.Equal(t, "expected a number at end of input", err.Error())
}

// Property: any uint32 rendered in decimal parses back to itself with nothing left over.
func TestUint32_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.Uint32().Draw(rt, "n")
		pad := rapid.StringMatching(`[ \t]{0,3}`).Draw(rt, "pad")
		v, rest, err := lex.Uint32(pad + strconv.FormatUint(uint64(n), 10))
		require.NoError(rt, err)
		assert.Equal(rt, n, v)
		assert.Equal(rt, "", rest)
	})
}
