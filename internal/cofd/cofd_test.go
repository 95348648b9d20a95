package cofd_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicebot/internal/cofd"
	"github.com/cory-johannsen/dicebot/internal/dice"
	"github.com/cory-johannsen/dicebot/internal/dice/dicetest"
	"github.com/cory-johannsen/dicebot/internal/dice/lex"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want cofd.Pool
	}{
		{"3", cofd.NewPool(3, cofd.TenAgain, 5)},
		{"3n", cofd.NewPool(3, cofd.NineAgain, 5)},
		{"e 4", cofd.NewPool(4, cofd.EightAgain, 5)},
		{"r5s3", cofd.NewPool(5, cofd.Rote, 3)},
		{" s2 6 n ", cofd.NewPool(6, cofd.NineAgain, 2)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			p, err := cofd.Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, p)
			assert.Equal(t, cofd.Sides, p.Sides)
			assert.Equal(t, cofd.DefaultSuccessThreshold, p.SuccessThreshold)
		})
	}
}

func TestParse_FirstTokenWins(t *testing.T) {
	p, err := cofd.Parse("3 4 n e s2 s7")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), p.Count)
	assert.Equal(t, cofd.NineAgain, p.Quality)
	assert.Equal(t, uint32(2), p.ExceptionalThreshold)
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "n", "s3", "0", "3x", "3 s", "s0 3", "101", "99999999999", "3 s 2", "s 2 3"} {
		t.Run(in, func(t *testing.T) {
			_, err := cofd.Parse(in)
			require.Error(t, err)
			var lexErr *lex.Error
			assert.True(t, errors.As(err, &lexErr))
		})
	}
}

func TestParse_ThresholdDigitsMustTouchS(t *testing.T) {
	_, err := cofd.Parse("3 s 2")
	require.Error(t, err)
	assert.Equal(t, `expected digits right after 's', e.g. s3 at "s 2"`, err.Error())
}

func TestRoll_ExplosionChainIsBounded(t *testing.T) {
	roll := cofd.Roll(cofd.NewPool(20, cofd.TenAgain, 5), dicetest.Fixed(10))
	require.Len(t, roll.Dice, 20)
	for _, d := range roll.Dice {
		assert.Len(t, d, cofd.MaxChain)
	}
	assert.Equal(t, uint32(20*cofd.MaxChain), roll.Successes())

	rote := cofd.Roll(cofd.NewPool(1, cofd.Rote, 5), dicetest.Fixed(10))
	assert.Len(t, rote.Dice[0], cofd.MaxChain)
}

func TestChancePool(t *testing.T) {
	p := cofd.ChancePool()
	assert.Equal(t, uint32(1), p.Count)
	assert.Equal(t, uint32(10), p.SuccessThreshold)
	assert.Equal(t, uint32(5), p.ExceptionalThreshold)
	assert.Equal(t, cofd.ChanceDie, p.Quality)
}

func TestRoll_Explosions(t *testing.T) {
	cases := []struct {
		name    string
		quality cofd.Quality
		seq     []uint32
		want    cofd.DieRoll
	}{
		{"ten-again", cofd.TenAgain, []uint32{10, 8, 1}, cofd.DieRoll{10, 8}},
		{"nine-again", cofd.NineAgain, []uint32{10, 9, 8, 1}, cofd.DieRoll{10, 9, 8}},
		{"eight-again", cofd.EightAgain, []uint32{8, 10, 9, 2}, cofd.DieRoll{8, 10, 9, 2}},
		{"no explode", cofd.NoExplode, []uint32{10, 10}, cofd.DieRoll{10}},
		{"rote rerolls a failure", cofd.Rote, []uint32{5, 8, 1}, cofd.DieRoll{5, 8}},
		{"rote keeps a success", cofd.Rote, []uint32{8, 7}, cofd.DieRoll{8}},
		{"rote rerolls once only", cofd.Rote, []uint32{2, 3, 9}, cofd.DieRoll{2, 3}},
		{"rote explosion is not rerolled", cofd.Rote, []uint32{10, 2, 9}, cofd.DieRoll{10, 2}},
		{"rote reroll explodes", cofd.Rote, []uint32{1, 10, 4}, cofd.DieRoll{1, 10, 4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			roll := cofd.Roll(cofd.NewPool(1, tc.quality, 5), dicetest.NewSequence(tc.seq...))
			require.Len(t, roll.Dice, 1)
			assert.Equal(t, tc.want, roll.Dice[0])
		})
	}
}

func TestRoll_ChanceDieNeverExplodes(t *testing.T) {
	roll := cofd.Roll(cofd.ChancePool(), dicetest.NewSequence(10))
	assert.Equal(t, []uint32{10}, roll.Values())
	assert.Equal(t, uint32(1), roll.Successes())
	assert.Equal(t, "1 success", roll.Outcome())
}

func TestRoll_Successes(t *testing.T) {
	roll := cofd.Roll(cofd.NewPool(3, cofd.TenAgain, 3), dicetest.NewSequence(10, 8, 7, 9))
	assert.Equal(t, []uint32{10, 8, 7, 9}, roll.Values())
	assert.Equal(t, uint32(3), roll.Successes())
	assert.True(t, roll.Exceptional())
	assert.Equal(t, "3 successes (exceptional success!)", roll.Outcome())
}

func TestOutcome_ChanceDie(t *testing.T) {
	dramatic := cofd.Roll(cofd.ChancePool(), dicetest.NewSequence(1))
	assert.True(t, dramatic.DramaticFailure())
	assert.Equal(t, "dramatic failure!", dramatic.Outcome())

	plain := cofd.Roll(cofd.ChancePool(), dicetest.NewSequence(6))
	assert.False(t, plain.DramaticFailure())
	assert.Equal(t, "failure!", plain.Outcome())
}

func TestOutcome_OneOnOrdinaryPoolIsPlainFailure(t *testing.T) {
	roll := cofd.Roll(cofd.NewPool(1, cofd.TenAgain, 5), dicetest.NewSequence(1))
	assert.Equal(t, "failure!", roll.Outcome())
}

func TestFormatValues(t *testing.T) {
	assert.Equal(t, "1, 2, 3", cofd.FormatValues([]uint32{1, 2, 3}))

	fifteen := make([]uint32, 15)
	for i := range fifteen {
		fifteen[i] = 5
	}
	assert.Equal(t, "5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5", cofd.FormatValues(fifteen))
	assert.Equal(t, "5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, and 2 more",
		cofd.FormatValues(append(fifteen, 7, 7)))
}

func TestRender(t *testing.T) {
	roll := cofd.Roll(cofd.NewPool(2, cofd.NineAgain, 5), dicetest.NewSequence(9, 3, 8))
	msg := cofd.Render(roll)
	assert.Equal(t,
		"Pool: 2 dice (nine-again, exceptional on 5 successes)\nRolls: 9, 3, 8\nResult: 2 successes",
		msg.Plain)
	assert.Contains(t, msg.HTML, "<p><strong>Result:</strong> 2 successes</p>")

	chance := cofd.Render(cofd.Roll(cofd.ChancePool(), dicetest.NewSequence(1)))
	assert.Equal(t, "Pool: chance die\nRolls: 1\nResult: dramatic failure!", chance.Plain)
}

// Property: every chain ends on a value below the explosion threshold and
// successes equal the count of values at or above 8.
func TestRoll_ChainProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		q := rapid.SampledFrom([]cofd.Quality{cofd.TenAgain, cofd.NineAgain, cofd.EightAgain, cofd.NoExplode}).Draw(rt, "quality")
		count := rapid.Uint32Range(1, 20).Draw(rt, "count")
		seed := rapid.Uint64().Draw(rt, "seed")

		roll := cofd.Roll(cofd.NewPool(count, q, 5), dice.NewRoller(dice.NewSeededSource(seed)))
		require.Len(rt, roll.Dice, int(count))

		threshold := map[cofd.Quality]uint32{cofd.TenAgain: 10, cofd.NineAgain: 9, cofd.EightAgain: 8, cofd.NoExplode: 11}[q]
		var successes uint32
		for _, d := range roll.Dice {
			require.NotEmpty(rt, d)
			for i, v := range d {
				if i < len(d)-1 {
					assert.GreaterOrEqual(rt, v, threshold)
				}
				if v >= 8 {
					successes++
				}
			}
			assert.Less(rt, d[len(d)-1], threshold)
		}
		assert.Equal(rt, successes, roll.Successes())
	})
}
