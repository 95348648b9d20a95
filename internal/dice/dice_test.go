package dice_test

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicebot/internal/dice"
	"github.com/cory-johannsen/dicebot/internal/dice/dicetest"
	"github.com/cory-johannsen/dicebot/internal/dice/lex"
	"github.com/cory-johannsen/dicebot/internal/variables"
)

func TestParse_Terms(t *testing.T) {
	expr, err := dice.Parse("2d6+3-1d4")
	require.NoError(t, err)
	require.Len(t, expr.Terms, 3)

	assert.Equal(t, lex.Plus, expr.Terms[0].Sign)
	assert.Equal(t, dice.Dice{Count: 2, Sides: 6, Keep: 2}, expr.Terms[0].Element)
	assert.Equal(t, lex.Plus, expr.Terms[1].Sign)
	assert.Equal(t, dice.Bonus(3), expr.Terms[1].Element)
	assert.Equal(t, lex.Minus, expr.Terms[2].Sign)
	assert.Equal(t, dice.Dice{Count: 1, Sides: 4, Keep: 1}, expr.Terms[2].Element)
}

func TestParse_Whitespace(t *testing.T) {
	expr, err := dice.Parse(" \t2 d 6 +\n3 - 1d4k1 ")
	require.NoError(t, err)
	assert.Equal(t, "2d6 + 3 - 1d4", expr.String())
}

func TestParse_Modifiers(t *testing.T) {
	cases := []struct {
		in   string
		want dice.Dice
	}{
		{"4d6k3", dice.Dice{Count: 4, Sides: 6, Keep: 3}},
		{"4d6dh1", dice.Dice{Count: 4, Sides: 6, Keep: 4, Drop: 1}},
		{"4d6k0", dice.Dice{Count: 4, Sides: 6, Keep: 4}},
		{"4d6k9", dice.Dice{Count: 4, Sides: 6, Keep: 4}},
		{"4d6dh4", dice.Dice{Count: 4, Sides: 6, Keep: 4}},
		{"4d6dh3", dice.Dice{Count: 4, Sides: 6, Keep: 4, Drop: 3}},
		// The last modifier written wins.
		{"4d6k3dh1", dice.Dice{Count: 4, Sides: 6, Keep: 4, Drop: 1}},
		{"4d6dh1k3", dice.Dice{Count: 4, Sides: 6, Keep: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			expr, err := dice.Parse(tc.in)
			require.NoError(t, err)
			require.Len(t, expr.Terms, 1)
			assert.Equal(t, tc.want, expr.Terms[0].Element)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{
		"",
		"2d",
		"2dh1",
		"0d6",
		"2d0",
		"2d6 3",
		"2d6+",
		"2d6k",
		"4294967296d6",
		"1001d6",
		"2d6 * 3",
		"+",
	} {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			_, err := dice.Parse(in)
			require.Error(t, err)
			var lexErr *lex.Error
			assert.True(t, errors.As(err, &lexErr), "parse failures must be *lex.Error, got %T", err)
		})
	}
}

func TestParse_TrailingInputIsReported(t *testing.T) {
	_, err := dice.Parse("2d6 junk")
	require.Error(t, err)
	assert.Equal(t, `unexpected input at "junk"`, err.Error())
}

func TestParse_DetachedLetterIsStrayInput(t *testing.T) {
	_, err := dice.Parse("3 dex")
	require.Error(t, err)
	assert.Equal(t, `unexpected input at "dex"`, err.Error())

	_, err = dice.Parse("3dex")
	require.Error(t, err)
	assert.Equal(t, `expected number of sides after 'd' at "dex"`, err.Error())

	expr, err := dice.Parse("2 d 6")
	require.NoError(t, err)
	assert.Equal(t, "2d6", expr.String())
}

func TestParse_NumberTooLarge(t *testing.T) {
	_, err := dice.Parse("4294967296d6")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "number 4294967296 is too large")
}

func TestParse_Variables(t *testing.T) {
	expr, err := dice.Parse("3 + abc + bob - 4 + abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "bob"}, expr.VariableNames())
	assert.Equal(t, "3 + abc + bob - 4 + abc", expr.String())
}

func TestParse_LeadingNegative(t *testing.T) {
	expr, err := dice.Parse("-1d4 + 2")
	require.NoError(t, err)
	assert.Equal(t, lex.Minus, expr.Terms[0].Sign)
	assert.Equal(t, "-1d4 + 2", expr.String())
}

func TestRoll_Basic(t *testing.T) {
	expr := dice.MustParse("2d6+3")
	roll := dice.Roll(expr, dicetest.NewSequence(4, 5))
	assert.Equal(t, int64(12), roll.Total())
	assert.Equal(t, "12 (9 (5 + 4) + 3)", roll.String())
}

func TestRoll_SingleDie(t *testing.T) {
	roll := dice.Roll(dice.MustParse("1d20"), dicetest.NewSequence(14))
	assert.Equal(t, "14", roll.String())
}

func TestRoll_KeepHighest(t *testing.T) {
	roll := dice.Roll(dice.MustParse("4d6k3"), dicetest.NewSequence(2, 6, 3, 5))
	assert.Equal(t, int64(14), roll.Total())
	assert.Equal(t, "14 (6 + 5 + 3 + [2])", roll.String())
}

func TestRoll_DropHighest(t *testing.T) {
	roll := dice.Roll(dice.MustParse("4d6dh1"), dicetest.NewSequence(2, 6, 3, 5))
	assert.Equal(t, int64(10), roll.Total())
	assert.Equal(t, "10 ([6] + 5 + 3 + 2)", roll.String())
}

func TestRoll_NegativeTerms(t *testing.T) {
	roll := dice.Roll(dice.MustParse("-1d4"), dicetest.NewSequence(3))
	assert.Equal(t, int64(-3), roll.Total())
	assert.Equal(t, "-3 (-3)", roll.String())

	roll = dice.Roll(dice.MustParse("1d4 - 10"), dicetest.NewSequence(3))
	assert.Equal(t, "-7 (3 - 10)", roll.String())
}

func TestRoll_Variables(t *testing.T) {
	expr := dice.MustParse("1d6 + str - luck")
	bound, err := expr.Bind(variables.Values{"str": 4, "luck": -2})
	require.NoError(t, err)
	roll := dice.Roll(bound, dicetest.NewSequence(6))
	assert.Equal(t, int64(12), roll.Total())
	assert.Equal(t, "12 (6 + 4 + 2)", roll.String())
	assert.Equal(t, "1d6 + str - luck", bound.String())
}

func TestRoll_NegativeVariableFoldsSign(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"1d4 + bob", "1 (3 - 2)"},
		{"1d4 - bob", "5 (3 + 2)"},
		{"bob", "-2 (-2)"},
		{"-bob", "2"},
		{"bob + 1d4", "1 (-2 + 3)"},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			bound, err := dice.MustParse(tc.expr).Bind(variables.Values{"bob": -2})
			require.NoError(t, err)
			shown := dice.Roll(bound, dicetest.Fixed(3)).String()
			assert.Equal(t, tc.want, shown)
			assert.NotContains(t, shown, "+ -")
			assert.NotContains(t, shown, "- -")
		})
	}

	bound, err := dice.MustParse("1d4 + low").Bind(variables.Values{"low": math.MinInt32})
	require.NoError(t, err)
	assert.Equal(t, "-2147483645 (3 - 2147483648)", dice.Roll(bound, dicetest.Fixed(3)).String())
}

func TestBind_Missing(t *testing.T) {
	expr := dice.MustParse("1d6 + str + dex")
	_, err := expr.Bind(variables.Values{"str": 1})
	var nf *variables.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "dex", nf.Name)
}

func TestRoll_PanicsOnUnboundVariable(t *testing.T) {
	expr := dice.MustParse("1d6 + str")
	assert.Panics(t, func() { dice.Roll(expr, dicetest.NewSequence(1)) })
}

func TestRender(t *testing.T) {
	expr := dice.MustParse("2d6+3")
	msg := dice.Render(expr, dice.Roll(expr, dicetest.NewSequence(4, 5)))
	assert.Equal(t, "Dice: 2d6 + 3\nResult: 12 (9 (5 + 4) + 3)", msg.Plain)
	assert.Equal(t,
		"<p><strong>Dice:</strong> 2d6 + 3</p><p><strong>Result:</strong> 12 (9 (5 + 4) + 3)</p>",
		msg.HTML)
}

// Property: after clamping, 0 < Keep <= Count and Drop < Keep for any inputs.
func TestNewDice_ClampProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.Uint32Range(1, 1000).Draw(rt, "count")
		sides := rapid.Uint32Range(1, 100).Draw(rt, "sides")
		kind := rapid.SampledFrom([]dice.ModifierKind{dice.NoModifier, dice.KeepHighest, dice.DropHighest}).Draw(rt, "kind")
		value := rapid.Uint32().Draw(rt, "value")

		d := dice.NewDice(count, sides, dice.Modifier{Kind: kind, Value: value})
		assert.Greater(rt, d.Keep, uint32(0))
		assert.LessOrEqual(rt, d.Keep, d.Count)
		assert.Less(rt, d.Drop, d.Keep)
	})
}

var breakdown = regexp.MustCompile(`^(-?\d+) \((.*)\)$`)

// Property: re-summing the displayed kept values of a dice roll gives the displayed total.
func TestDiceRoll_DisplayRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.Uint32Range(2, 12).Draw(rt, "count")
		sides := rapid.Uint32Range(1, 20).Draw(rt, "sides")
		kind := rapid.SampledFrom([]dice.ModifierKind{dice.NoModifier, dice.KeepHighest, dice.DropHighest}).Draw(rt, "kind")
		value := rapid.Uint32Range(0, 14).Draw(rt, "value")
		seed := rapid.Uint64().Draw(rt, "seed")

		d := dice.NewDice(count, sides, dice.Modifier{Kind: kind, Value: value})
		roll := dice.RollDice(d, dice.NewRoller(dice.NewSeededSource(seed)))

		m := breakdown.FindStringSubmatch(roll.String())
		require.NotNil(rt, m, "unexpected display %q", roll.String())
		total, err := strconv.ParseInt(m[1], 10, 64)
		require.NoError(rt, err)

		var sum int64
		for _, part := range strings.Split(m[2], " + ") {
			if strings.HasPrefix(part, "[") {
				continue
			}
			v, err := strconv.ParseInt(part, 10, 64)
			require.NoError(rt, err)
			sum += v
		}
		assert.Equal(rt, total, sum)
		assert.Equal(rt, roll.Value(), total)
	})
}

// Property: the leading term never shows "+", and later terms are joined by " + " or " - ".
func TestExpressionRoll_SignDisplayProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 6).Draw(rt, "terms")
		var src strings.Builder
		for i := 0; i < n; i++ {
			if i > 0 {
				src.WriteString(rapid.SampledFrom([]string{"+", "-"}).Draw(rt, "sign"))
			}
			src.WriteString(strconv.Itoa(rapid.IntRange(0, 50).Draw(rt, "bonus")))
		}
		expr, err := dice.Parse(src.String())
		require.NoError(rt, err)

		shown := expr.String()
		assert.False(rt, strings.HasPrefix(shown, "+"))
		assert.Equal(rt, n-1, strings.Count(shown, " + ")+strings.Count(shown, " - "))

		rolled := dice.Roll(expr, dicetest.Fixed(1)).String()
		inner := breakdown.FindStringSubmatch(rolled)
		require.NotNil(rt, inner, "unexpected display %q", rolled)
		assert.False(rt, strings.HasPrefix(inner[2], "+"))
		assert.Equal(rt, n-1, strings.Count(inner[2], " + ")+strings.Count(inner[2], " - "))
	})
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewRoller(dice.NewSeededSource(42))
	b := dice.NewRoller(dice.NewSeededSource(42))
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.RollNumber(20), b.RollNumber(20))
	}
}

func TestRollers_InRange(t *testing.T) {
	for name, r := range map[string]dice.Roller{
		"crypto":  dice.NewRoller(dice.NewCryptoSource()),
		"seeded":  dice.NewRoller(dice.NewSeededSource(7)),
		"message": dice.NewMessageRoller(),
	} {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 500; i++ {
				v := r.RollNumber(6)
				assert.GreaterOrEqual(t, v, uint32(1))
				assert.LessOrEqual(t, v, uint32(6))
			}
		})
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestLoggedRoller(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	factory := dice.LoggedFactory(func() dice.Roller { return dicetest.NewSequence(3) }, zap.New(core))

	v := factory().RollNumber(6)
	assert.Equal(t, uint32(3), v)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "die rolled", entry.Message)
	assert.Equal(t, uint32(6), entry.ContextMap()["sides"])
	assert.Equal(t, uint32(3), entry.ContextMap()["value"])
}
