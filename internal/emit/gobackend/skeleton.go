package gobackend

// skeleton is the Go-target skeleton template: a literal Go source file
// with "%% name %%" markers (spec.md §6.4) that internal/preprocess.Fill
// expands against the markers gobackend.Markers computes. It is processed
// the same way a user-supplied skeleton for a different target language
// would be; there is nothing Go-specific about the preprocessing step
// itself, only about this particular skeleton's content.
const skeleton = `// Code generated by polygen. DO NOT EDIT.
// polygen version: %% version %%
// generated:        %% datetime %%

// %% header %%

package %% parser_name %%

import (
	"github.com/polygen-project/polygen/internal/reader"
	"github.com/polygen-project/polygen/internal/runtime"
)

// Parser implements the generated parser interface (spec.md §6.3): a
// constructor taking an optional application state object, and a single
// Parse method that builds a reader over its input and drives the entry rule.
type Parser struct {
	state any
}

// New builds a Parser carrying appState, made available to every
// metarule body as the Extra field of its runtime.State.
func New(appState any) *Parser {
	return &Parser{state: appState}
}

// SyntaxError reports a failed parse. Line and Col are the reader's
// position after the entry rule has failed, which is where the entry rule
// was tried, since a failing rule restores its start position; they are not
// the furthest position reached. No file name or offending token is recorded.
type SyntaxError struct {
	Line, Col int
}

func (e *SyntaxError) Error() string {
	return "syntax error"
}

// Parse drives the grammar's entry rule over input, returning the entry
// rule's result or a SyntaxError if no prefix of input matches.
func (p *Parser) Parse(input string) (any, error) {
	r := reader.NewFromString(input)
	s := runtime.NewState(r, p.state)
	v, ok := %% entry %%
	if !ok {
		return nil, &SyntaxError{Line: r.Line(), Col: r.Column()}
	}
	return v, nil
}

// growRules is the left-recursion head registry (spec.md §6.4's
// "grow_rules" marker): every rule name ComputeLR marked as a head, kept
// here for diagnostics/introspection rather than control flow (the
// dispatch itself lives in each head rule's generated method).
var growRules = %% grow_rules %%

func intPtr(n int) *int { return &n }

%% body %%

// %% footer %%
`
