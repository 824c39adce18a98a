package gobackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polygen-project/polygen/internal/emit"
	"github.com/polygen-project/polygen/internal/gparser"
	"github.com/polygen-project/polygen/internal/modifier"
)

func Test_Markers_SimpleGrammarProducesBodyAndEntry(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g, err := gparser.New(`@entry G <- "abc" EOF; EOF <- !.`, "t.peg").Parse()
	require.NoError(err)
	m := modifier.Default()
	diags, err := m.Run(g, nil)
	require.NoError(err)
	require.Empty(diags.Errors)

	b := New()
	markers, err := b.Markers(g, emit.Options{ParserName: "mygrammar", Package: "mygrammar"})
	require.NoError(err)

	assert.Contains(markers["body"], "func (p *Parser) rule_G(")
	assert.Contains(markers["body"], "func (p *Parser) rule_EOF(")
	assert.Equal("p.rule_G(s)", markers["entry"])
	assert.Equal("map[string]bool{}", markers["grow_rules"])
}

func Test_Markers_HeadRuleEmitsSeedGrowDispatch(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g, err := gparser.New(`@entry E <- E '+' N / N; N <- [0-9]`, "t.peg").Parse()
	require.NoError(err)
	m := modifier.Default()
	diags, err := m.Run(g, nil)
	require.NoError(err)
	require.Empty(diags.Errors)

	b := New()
	markers, err := b.Markers(g, emit.Options{ParserName: "calc", Package: "calc"})
	require.NoError(err)

	assert.Contains(markers["body"], "runtime.SeedGrow(s, \"E\"")
	assert.Contains(markers["grow_rules"], `"E": true`)
}

func Test_Markers_IndirectHeadRuleListsChainMembers(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g, err := gparser.New(`@entry A <- B 'a'; B <- C 'b'; C <- A 'c' / D 'c'; D <- 'd'`, "t.peg").Parse()
	require.NoError(err)
	m := modifier.Default()
	diags, err := m.Run(g, nil)
	require.NoError(err)
	require.Empty(diags.Errors)

	b := New()
	markers, err := b.Markers(g, emit.Options{ParserName: "indirect", Package: "indirect"})
	require.NoError(err)

	assert.Contains(markers["body"], `runtime.SeedGrow(s, "A", seeds, growers, "B", "C")`)
}

func Test_Generate_FillsSkeleton(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g, err := gparser.New(`@entry G <- "abc" EOF; EOF <- !.`, "t.peg").Parse()
	require.NoError(err)
	m := modifier.Default()
	diags, err := m.Run(g, nil)
	require.NoError(err)
	require.Empty(diags.Errors)

	out, err := emit.Generate(New(), g, emit.Options{ParserName: "mygrammar", Package: "mygrammar", Version: "test"}, "2026-08-01")
	require.NoError(err)
	assert.Contains(out, "package mygrammar")
	assert.Contains(out, "func (p *Parser) rule_G(")
	assert.Contains(out, "polygen version: test")
}
