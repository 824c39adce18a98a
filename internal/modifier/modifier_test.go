package modifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polygen-project/polygen/internal/ast"
	"github.com/polygen-project/polygen/internal/gparser"
)

func parseGrammar(t *testing.T, src string) *ast.Grammar {
	t.Helper()
	g, err := gparser.New(src, "t.peg").Parse()
	require.NoError(t, err)
	return g
}

func Test_Modifier_SimpleGrammarConverges(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := parseGrammar(t, `@entry G <- "abc" EOF; EOF <- !.`)

	m := Default()
	diags, err := m.Run(g, nil)
	require.NoError(err)
	require.Empty(diags.Errors)

	require.NotNil(g.Entry)
	assert.Equal("G", g.Entry.Id.Name)

	gAlt := g.Entry.Expr.Alts[0]
	assert.Equal("_1", gAlt.Items[0].MetaName.Name)
	assert.Equal("eof", gAlt.Items[1].MetaName.Name)
}

func Test_Modifier_UndefinedReferenceIsFatal(t *testing.T) {
	require := require.New(t)

	g := parseGrammar(t, `@entry G <- Missing`)

	m := Default()
	diags, err := m.Run(g, nil)
	require.Error(err)
	require.NotEmpty(diags.Errors)
	_, ok := diags.Errors[0].(*UndefinedReferenceError)
	require.True(ok)
}

func Test_Modifier_RedefinedRuleIsFatal(t *testing.T) {
	require := require.New(t)

	g := parseGrammar(t, `@entry G <- 'a'; G <- 'b'`)

	m := Default()
	_, err := m.Run(g, nil)
	require.Error(err)
}

func Test_Modifier_NoEntryIsFatal(t *testing.T) {
	require := require.New(t)

	g := parseGrammar(t, `G <- 'a'`)

	m := Default()
	_, err := m.Run(g, nil)
	require.Error(err)
}

func Test_Modifier_ReplaceNestedExprsLiftsGroup(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := parseGrammar(t, `@entry G <- 'a' ('b' 'c') EOF; EOF <- !.`)

	m := Default()
	diags, err := m.Run(g, nil)
	require.NoError(err)
	require.Empty(diags.Errors)

	alt := g.Entry.Expr.Alts[0]
	require.Len(alt.Items, 3)
	assert.Equal(ast.KindId, alt.Items[1].Item.Kind)
	genRule := g.RuleById(alt.Items[1].Item.IdRef.Name)
	require.NotNil(genRule)
	require.Len(genRule.Expr.Alts[0].Items, 2)
}

func Test_Modifier_IgnoreRulesSetsUnderscoreName(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := parseGrammar(t, `@entry G <- W 'x' EOF; @ignore W <- ' '; EOF <- !.`)

	m := Default()
	diags, err := m.Run(g, nil)
	require.NoError(err)
	require.Empty(diags.Errors)

	alt := g.Entry.Expr.Alts[0]
	assert.Equal("_", alt.Items[0].MetaName.Name)
}

func Test_Modifier_MetaRuleAssignment(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `
$double { return x * 2 }
@entry A <- x:'1' EOF $double
EOF <- !.
`
	g := parseGrammar(t, src)

	m := Default()
	diags, err := m.Run(g, nil)
	require.NoError(err)
	require.Empty(diags.Errors)
	require.Empty(g.MetaRules)

	alt := g.Entry.Expr.Alts[0]
	require.NotNil(alt.MetaRule)
	assert.Equal(" return x * 2 ", alt.MetaRule.Body)
}

func Test_Modifier_UnresolvedMetaRefIsFatal(t *testing.T) {
	require := require.New(t)

	g := parseGrammar(t, `@entry A <- 'x' $nope`)

	m := Default()
	_, err := m.Run(g, nil)
	require.Error(err)
}

func Test_Modifier_LeftRecursionClassifiesSeedAndGrower(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	// Single-member chain (E refers to itself directly): chain length 1
	// means the head itself is the comparison target.
	src := `@entry E <- E '+' N / N; N <- [0-9]`
	g := parseGrammar(t, src)

	m := Default()
	diags, err := m.Run(g, nil)
	require.NoError(err)
	require.Empty(diags.Errors)

	e := g.RuleById("E")
	require.NotNil(e)
	assert.True(e.Head)
	require.NotNil(e.LeftRec)
	require.Len(e.Expr.Alts, 2)
	assert.True(e.Expr.Alts[0].Grower)
	assert.False(e.Expr.Alts[1].Grower)
}

func Test_Modifier_NoSeedHeadCompilesAsIndirectRecursion(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	// E's SCC has two members {E, F}; every alternative of E begins with a
	// reference to F (the other member), never to E itself directly, so
	// both of E's alternatives classify as growers and E has no seed of
	// its own. This is valid indirect left recursion (spec.md §7 scenario
	// 4): the seed comes from bootstrapping a grower through F's call back
	// into E, not from a literal non-recursive alt of E. It must compile
	// cleanly, not raise a fatal diagnostic.
	src := `@entry E <- F 'a' / F 'b'; F <- E 'c'`
	g := parseGrammar(t, src)

	m := Default()
	diags, err := m.Run(g, nil)
	require.NoError(err)
	require.Empty(diags.Errors)

	e := g.RuleById("E")
	require.NotNil(e)
	assert.True(e.Head)
	require.Len(e.Expr.Alts, 2)
	assert.True(e.Expr.Alts[0].Grower)
	assert.True(e.Expr.Alts[1].Grower)
}
