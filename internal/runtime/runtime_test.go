package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polygen-project/polygen/internal/reader"
)

func charRule(want rune) Rule {
	return func(s *State) (any, bool) {
		c := want
		return ExpectChar(s, &c)
	}
}

func Test_ExpectString_AllOrNothing(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := NewState(reader.NewFromString("abcd"), nil)
	v, ok := ExpectString(s, "abx")
	require.False(ok)
	assert.Empty(v)

	v, ok = ExpectString(s, "abc")
	require.True(ok)
	assert.Equal("abc", v)
}

func Test_Loop_StopsAtFirstFailure(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := NewState(reader.NewFromString("aaab"), nil)
	out, ok := Loop(s, true, charRule('a'))
	require.True(ok)
	assert.Len(out, 3)

	c, ok := ExpectChar(s, nil)
	require.True(ok)
	assert.Equal('b', c)
}

func Test_Rep_Bounded(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := NewState(reader.NewFromString("aaaa"), nil)
	last := 2
	out, ok := Rep(s, 1, &last, charRule('a'))
	require.True(ok)
	assert.Len(out, 2)
}

func Test_Lookahead_RestoresPosition(t *testing.T) {
	require := require.New(t)

	s := NewState(reader.NewFromString("ab"), nil)
	_, ok := Lookahead(s, true, charRule('a'))
	require.True(ok)

	c, ok := ExpectChar(s, nil)
	require.True(ok)
	require.Equal(rune('a'), c)
}

func Test_Memoized_SecondCallHitsCache(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	calls := 0
	body := func(s *State) (any, bool) {
		calls++
		return ExpectChar(s, nil)
	}

	s := NewState(reader.NewFromString("x"), nil)
	mark := s.R.Mark()

	_, ok := Memoized(s, "R", body)
	require.True(ok)

	s.R.Restore(mark)
	_, ok = Memoized(s, "R", body)
	require.True(ok)
	assert.Equal(1, calls)
}

func Test_SeedGrow_LeftRecursiveArithmetic(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	// E <- E '+' digit / digit
	digit := func(s *State) (any, bool) {
		c, ok := s.R.Peek()
		if !ok || c < '0' || c > '9' {
			return nil, false
		}
		s.R.Next()
		return string(c), true
	}

	var e Rule
	e = func(s *State) (any, bool) {
		seed := func(s *State) (any, bool) { return digit(s) }
		grower := func(s *State) (any, bool) {
			left, ok := e(s)
			if !ok {
				return nil, false
			}
			if _, ok := ExpectChar(s, ampersand('+')); !ok {
				return nil, false
			}
			right, ok := digit(s)
			if !ok {
				return nil, false
			}
			return []any{left, "+", right}, true
		}
		return SeedGrow(s, "E", []Rule{seed}, []Rule{grower})
	}

	s := NewState(reader.NewFromString("1+2+3"), nil)
	v, ok := e(s)
	require.True(ok)
	assert.Equal([]any{[]any{"1", "+", "2"}, "+", "3"}, v)
}

func ampersand(r rune) *rune { return &r }

// Test_SeedGrow_IndirectLeftRecursion builds "A <- B 'a'; B <- C 'b';
// C <- A 'c' / D 'c'; D <- 'd'" by hand: A is the only head (its sole
// alternative "B 'a'" is a grower, so seeds is empty and the bootstrap must
// come from C falling through to "D 'c'" under A's still-failed sentinel).
// B and C are ordinary Memoized rules, not heads, so their memo entries at
// A's start position must be invalidated on every grow iteration or growth
// never gets past the first cycle.
func Test_SeedGrow_IndirectLeftRecursion(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := func(s *State) (any, bool) {
		return Memoized(s, "D", func(s *State) (any, bool) {
			return ExpectChar(s, ampersand('d'))
		})
	}

	var a Rule
	c := func(s *State) (any, bool) {
		return Memoized(s, "C", func(s *State) (any, bool) {
			start := s.R.Mark()
			if left, ok := a(s); ok {
				if _, ok := ExpectChar(s, ampersand('c')); ok {
					return []any{left, "c"}, true
				}
			}
			s.R.Restore(start)
			left, ok := d(s)
			if !ok {
				return nil, false
			}
			if _, ok := ExpectChar(s, ampersand('c')); !ok {
				return nil, false
			}
			return []any{left, "c"}, true
		})
	}
	b := func(s *State) (any, bool) {
		return Memoized(s, "B", func(s *State) (any, bool) {
			left, ok := c(s)
			if !ok {
				return nil, false
			}
			if _, ok := ExpectChar(s, ampersand('b')); !ok {
				return nil, false
			}
			return []any{left, "b"}, true
		})
	}
	a = func(s *State) (any, bool) {
		grower := func(s *State) (any, bool) {
			left, ok := b(s)
			if !ok {
				return nil, false
			}
			if _, ok := ExpectChar(s, ampersand('a')); !ok {
				return nil, false
			}
			return []any{left, "a"}, true
		}
		return SeedGrow(s, "A", nil, []Rule{grower}, "B", "C")
	}

	s := NewState(reader.NewFromString("dcba"), nil)
	v, ok := a(s)
	require.True(ok)
	assert.Equal([]any{[]any{[]any{"d", "c"}, "b"}, "a"}, v)

	s2 := NewState(reader.NewFromString("dcbacba"), nil)
	v2, ok := a(s2)
	require.True(ok)
	assert.Equal(
		[]any{[]any{[]any{[]any{[]any{[]any{"d", "c"}, "b"}, "a"}, "c"}, "b"}, "a"},
		v2,
	)
}
