// Package gparser is the hand-written recursive-descent parser for the
// grammar language (spec.md §4.2, §6.1): directives, rules, named metarule
// definitions, and the PEG expression syntax augmented with bounded
// repetition and inline character classes.
//
// Its structure mirrors original_source/polygen/grammar_parser.py: one
// parsing method per grammar rule, each saving a reader.Pos on entry and
// restoring it on failure, single-rune lookahead throughout.
package gparser

import "fmt"

// SyntaxError is raised by the grammar parser on unrecoverable failure
// (spec.md §7). Only one SyntaxError terminates a parse; there is no
// batching at this layer, unlike internal/modifier's passes.
type SyntaxError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: syntax error: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: syntax error: %s", e.Line, e.Column, e.Message)
}

func newSyntaxErrorf(file string, line, col int, format string, a ...interface{}) *SyntaxError {
	return &SyntaxError{File: file, Line: line, Column: col, Message: fmt.Sprintf(format, a...)}
}
