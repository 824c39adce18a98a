// Package ast defines the grammar AST that internal/gparser builds,
// internal/modifier and internal/leftrec rewrite and annotate in place, and
// internal/emit walks to produce target-language source (spec.md §3).
//
// The tree is exclusively owned by the compiling driver for the lifetime of
// a single compilation; passes mutate nodes in place and may append new
// Rules to the Grammar. Nodes do not hold parent pointers — back-reference
// during traversal goes through the explicit Path stack in walk.go, the way
// spec.md §9 requires, mirroring how internal/ictiobus/types.ParseTree
// avoids parent pointers by only ever walking top-down.
package ast

import "github.com/polygen-project/polygen/internal/hashid"

// ParseInfo locates a node in its source grammar file, for diagnostics.
type ParseInfo struct {
	File  string
	Start int
	End   int
	Line  int
	Col   int
}

// Id is a grammar identifier: a rule name, a metaname, or a metarule name.
// Equality and hashing are defined over the string value via
// internal/hashid, per the Data Model's "stable hash/equality over string
// value" requirement — this matters once identifiers are interned across
// multiple @include'd files with their own ParseInfo.
type Id struct {
	Name string
	Info *ParseInfo
}

// Hash returns the stable content hash of the Id's name. The ordered
// sets/maps of internal/oset key on the name string itself, not on Hash.
func (id Id) Hash() string { return hashid.Sum(id.Name) }

// Equal compares two Ids by name only; ParseInfo is provenance, not
// identity.
func (id Id) Equal(o Id) bool { return id.Name == o.Name }

// Char is a single Unicode code point.
type Char rune

// Range is a closed interval of code points, First <= Last. A Range with
// Last == nil denotes a single-character range (First only).
type Range struct {
	First Char
	Last  *Char
}

// Lo returns the inclusive lower bound of the range.
func (r Range) Lo() Char { return r.First }

// Hi returns the inclusive upper bound of the range (First, if Last is nil).
func (r Range) Hi() Char {
	if r.Last == nil {
		return r.First
	}
	return *r.Last
}

// Contains reports whether c falls within the closed interval [Lo, Hi].
func (r Range) Contains(c Char) bool {
	return c >= r.Lo() && c <= r.Hi()
}
