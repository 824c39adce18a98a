// Package runtime is the support library generated parsers import: the
// primitives spec.md §4.6 names (expect_char, expect_string, lookahead,
// loop, rep, maybe, ranges) plus the seed-growing driver for left-recursive
// head rules, all operating over internal/reader.Reader and
// internal/runtime/memo.Table.
//
// The State/Reader split and the "a rule is a method that tries to match
// and reports ok" shape are grounded on itsManjeet-exp/peg's
// Parser/State/Expression.Scan design; the memo table and seed-growing loop
// have no equivalent there and are built directly from spec.md §4.6.
package runtime

import (
	"github.com/polygen-project/polygen/internal/reader"
	"github.com/polygen-project/polygen/internal/runtime/memo"
)

// Fail is the sentinel "empty success" value Maybe returns when f did not
// match.
var Fail struct{}

// State is what every generated rule function and runtime primitive is
// threaded: the input reader, the active memo table, and an application
// state value the grammar's metarule bodies may read and mutate.
type State struct {
	R     *reader.Reader
	Memo  *memo.Table
	Extra any
}

// NewState builds a fresh parse State with a clean memo table, as spec.md
// §5 requires at the start of every parse call.
func NewState(r *reader.Reader, extra any) *State {
	return &State{R: r, Memo: memo.New(), Extra: extra}
}

// Rule is the shape every generated rule function has: attempt a match at
// the reader's current position, returning the matched value and whether it
// succeeded. On failure, the reader position is left unspecified by
// convention (callers restore via a Mark/Restore pair around the call).
type Rule func(s *State) (any, bool)

// ExpectChar consumes one rune iff it equals want, or any rune at all if
// want is nil (the "." primary).
func ExpectChar(s *State, want *rune) (rune, bool) {
	c, ok := s.R.Peek()
	if !ok {
		return 0, false
	}
	if want != nil && c != *want {
		return 0, false
	}
	s.R.Next()
	return c, true
}

// ExpectString consumes len(want) runes matching want exactly, all or
// nothing: on any mismatch the reader is left at its starting position.
func ExpectString(s *State, want string) (string, bool) {
	mark := s.R.Mark()
	for _, wc := range want {
		c, ok := s.R.Next()
		if !ok || c != wc {
			s.R.Restore(mark)
			return "", false
		}
	}
	return want, true
}

// Ranges consumes one rune iff it falls within any of the given closed
// [lo,hi] intervals.
func Ranges(s *State, intervals ...[2]rune) (rune, bool) {
	c, ok := s.R.Peek()
	if !ok {
		return 0, false
	}
	for _, iv := range intervals {
		if c >= iv[0] && c <= iv[1] {
			s.R.Next()
			return c, true
		}
	}
	return 0, false
}

// Lookahead evaluates f without consuming input: position is restored
// regardless of outcome. It succeeds iff f's success equals positive
// (positive=true implements "&", positive=false implements "!").
func Lookahead(s *State, positive bool, f Rule) (any, bool) {
	mark := s.R.Mark()
	_, matched := f(s)
	s.R.Restore(mark)
	if matched == positive {
		return nil, true
	}
	return nil, false
}

// Loop collects results from repeated calls to f until f fails or makes no
// forward progress. Succeeds iff it collected at least one result when
// nonempty is true, or unconditionally otherwise; on failure the reader
// position is restored to where the loop started.
func Loop(s *State, nonempty bool, f Rule) ([]any, bool) {
	start := s.R.Mark()
	var out []any
	for {
		before := s.R.Mark()
		v, ok := f(s)
		if !ok {
			s.R.Restore(before)
			break
		}
		if s.R.Mark() == before {
			// No forward progress: stop to avoid looping forever on a
			// rule that can match the empty string.
			break
		}
		out = append(out, v)
	}
	if nonempty && len(out) == 0 {
		s.R.Restore(start)
		return nil, false
	}
	return out, true
}

// Rep is Loop bounded to [first, last]. If last is nil, it is treated as
// first (an exact count).
func Rep(s *State, first int, last *int, f Rule) ([]any, bool) {
	max := first
	if last != nil {
		max = *last
	}
	start := s.R.Mark()
	var out []any
	for len(out) < max {
		before := s.R.Mark()
		v, ok := f(s)
		if !ok {
			s.R.Restore(before)
			break
		}
		if s.R.Mark() == before {
			break
		}
		out = append(out, v)
	}
	if len(out) < first {
		s.R.Restore(start)
		return nil, false
	}
	return out, true
}

// Maybe returns f's result if it succeeds, else the Fail sentinel with ok
// forced true (a "?" quantifier never itself fails).
func Maybe(s *State, f Rule) (any, bool) {
	before := s.R.Mark()
	v, ok := f(s)
	if !ok {
		s.R.Restore(before)
		return Fail, true
	}
	return v, true
}

// Memoized wraps a non-left-recursive rule body in a packrat memo lookup,
// as spec.md §4.6's memo table contract requires for every rule (not just
// heads): on a hit, restore position to the stored end and return the
// stored result without re-evaluating body.
func Memoized(s *State, ruleName string, body Rule) (any, bool) {
	key := memo.Key{Rule: ruleName, Pos: s.R.Mark().Offset()}
	if e := s.Memo.Lookup(key); e != nil {
		if e.Failed {
			return nil, false
		}
		s.restoreOffset(e.End)
		return e.Result, true
	}

	start := s.R.Mark()
	v, ok := body(s)
	if !ok {
		s.R.Restore(start)
		s.Memo.StoreFailure(key)
		return nil, false
	}
	s.Memo.Store(key, v, s.R.Mark().Offset())
	return v, true
}

// restoreOffset seeks the reader forward from its current buffered
// position to the absolute rune offset end. The memo table only ever
// records offsets the reader has already buffered (they came from a prior
// Mark), so this never needs to read past what's already in the buffer.
func (s *State) restoreOffset(end int) {
	for s.R.Mark().Offset() < end {
		if _, ok := s.R.Next(); !ok {
			return
		}
	}
}

// SeedGrow runs the seed-growing algorithm (spec.md §4.6) for a
// left-recursive head rule: try every seed alternative first, in order,
// stopping at the first success; then repeatedly retry the grower
// alternatives from the seed's start position, keeping whichever grows the
// match further, until no grower makes progress.
//
// Every recursive reference to the head rule, including from within its own
// seed/grower bodies, must route back through SeedGrow rather than calling
// the seed/grower functions directly: a re-entry at the same position hits
// the memo entry this call installs and returns the current partial result
// immediately instead of recursing (spec.md §4.6: "Re-entries to the head
// at p during growth return the current memo contents without
// re-evaluation"). A re-entry during the seed phase (before any seed has
// succeeded) sees the still-failed sentinel and itself fails, which is what
// stops a seed alternative from referencing the head.
//
// A head can end up with no seed alternative at all: indirect left
// recursion (spec.md §7 scenario 4, e.g. "A <- B 'a'; B <- C 'b'; C <- A
// 'c' / D 'c'; D <- 'd'") classifies every one of A's alternatives as a
// grower, since A's first-reference chain never leaves the SCC through A
// itself. The seed still exists — it's just produced by bootstrapping a
// grower through the rest of the chain: C's "D 'c'" alternative is the
// actual base case, reached only once the recursive "A 'c'" alternative
// fails against A's still-failed sentinel. So when no seed alternative
// succeeds (including when there are none to try), the grower list itself
// is tried once under that sentinel; its first success is the bootstrap
// seed, and growth proceeds from there exactly as if it had come from a
// seed alternative.
//
// members names every other rule in the head's SCC (empty for a direct
// self-loop head with no chain partners). Those rules are ordinary
// Memoized calls, not SeedGrow calls, so nothing else invalidates their
// cached result at the start position between grow iterations — without
// clearing them here, a chain rule that bottomed out once during the
// bootstrap grow would keep returning that same cached (and by-then-stale)
// result forever, capping indirect recursion at one growth cycle.
func SeedGrow(s *State, ruleName string, seeds, growers []Rule, members ...string) (any, bool) {
	start := s.R.Mark()
	key := memo.Key{Rule: ruleName, Pos: start.Offset()}

	if e := s.Memo.Lookup(key); e != nil {
		if e.Failed {
			return nil, false
		}
		s.restoreOffset(e.End)
		return e.Result, true
	}

	s.Memo.StoreSeed(key, start.Offset())

	best, bestEnd, matched := tryAltsInOrder(s, start, seeds)
	if !matched {
		best, bestEnd, matched = tryAltsInOrder(s, start, growers)
	}
	if !matched {
		s.Memo.StoreFailure(key)
		return nil, false
	}
	s.Memo.Update(key, best, bestEnd)

	for {
		for _, m := range members {
			s.Memo.Delete(memo.Key{Rule: m, Pos: start.Offset()})
		}

		grew := false
		for _, grower := range growers {
			s.R.Restore(start)
			v, ok := grower(s)
			if !ok {
				continue
			}
			end := s.R.Mark().Offset()
			if end > bestEnd {
				best, bestEnd = v, end
				s.Memo.Update(key, best, bestEnd)
				grew = true
				break
			}
		}
		if !grew {
			break
		}
	}

	s.restoreOffset(bestEnd)
	return best, true
}

// tryAltsInOrder runs each alt from start in order, returning the first
// one that succeeds (ordered choice: first match wins, the rest are never
// tried).
func tryAltsInOrder(s *State, start reader.Pos, alts []Rule) (any, int, bool) {
	for _, alt := range alts {
		s.R.Restore(start)
		v, ok := alt(s)
		if ok {
			return v, s.R.Mark().Offset(), true
		}
	}
	return nil, 0, false
}
