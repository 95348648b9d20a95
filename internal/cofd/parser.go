package cofd

import (
	"github.com/cory-johannsen/dicebot/internal/dice/lex"
)

// Parse parses a dice pool expression. Tokens may appear in any order,
// separated by optional whitespace:
//
//	digits      dice count (required)
//	n | e | r   nine-again, eight-again, or rote quality (default ten-again)
//	s<digits>   exceptional success threshold, no space after s (default 5)
//
// When a category is given more than once the first occurrence wins.
//
// Postcondition: returns a Pool, or a *lex.Error.
func Parse(s string) (Pool, error) {
	var (
		count, exceptional        uint32
		haveCount, haveExc, haveQ bool
		quality                   = TenAgain
	)
	rest := lex.Whitespace(s)
	for rest != "" {
		switch {
		case lex.PeekDigit(rest):
			n, after, err := lex.Uint32(rest)
			if err != nil {
				return Pool{}, err
			}
			if !haveCount {
				if n == 0 {
					return Pool{}, lex.Errorf(rest, "a pool needs at least 1 die (use !chance for a chance die)")
				}
				if n > MaxCount {
					return Pool{}, lex.Errorf(rest, "cannot roll more than %d dice at once", MaxCount)
				}
				count, haveCount = n, true
			}
			rest = after
		case rest[0] == 's':
			if len(rest) < 2 || !lex.IsDigit(rest[1]) {
				return Pool{}, lex.Errorf(rest, "expected digits right after 's', e.g. s3")
			}
			n, after, err := lex.Uint32(rest[1:])
			if err != nil {
				return Pool{}, err
			}
			if !haveExc {
				if n == 0 {
					return Pool{}, lex.Errorf(rest, "exceptional success threshold must be at least 1")
				}
				exceptional, haveExc = n, true
			}
			rest = after
		case rest[0] == 'n' || rest[0] == 'e' || rest[0] == 'r':
			if !haveQ {
				quality, haveQ = qualityCodes[rest[0]], true
			}
			rest = rest[1:]
		default:
			return Pool{}, lex.Errorf(rest, "unexpected pool token")
		}
		rest = lex.Whitespace(rest)
	}
	if !haveCount {
		return Pool{}, lex.Errorf("", "expected a dice count")
	}
	if !haveExc {
		exceptional = DefaultExceptionalThreshold
	}
	return NewPool(count, quality, exceptional), nil
}

var qualityCodes = map[byte]Quality{
	'n': NineAgain,
	'e': EightAgain,
	'r': Rote,
}
