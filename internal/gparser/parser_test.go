package gparser

import (
	"testing"

	"github.com/polygen-project/polygen/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse_SimpleRule(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g, err := New(`@entry G <- "abc" EOF; EOF <- !.`, "test.peg").Parse()
	require.NoError(err)
	require.Len(g.Rules, 2)

	r := g.Rules[0]
	assert.Equal("G", r.Id.Name)
	assert.True(r.Entry)
	require.Len(r.Expr.Alts, 1)
	require.Len(r.Expr.Alts[0].Items, 2)
	assert.Equal(ast.KindString, r.Expr.Alts[0].Items[0].Item.Kind)
	assert.Equal("abc", r.Expr.Alts[0].Items[0].Item.StringVal)
	assert.Equal(ast.KindId, r.Expr.Alts[0].Items[1].Item.Kind)
	assert.Equal("EOF", r.Expr.Alts[0].Items[1].Item.IdRef.Name)

	eof := g.Rules[1]
	assert.Equal("EOF", eof.Id.Name)
	require.Len(eof.Expr.Alts[0].Items, 1)
	notItem := eof.Expr.Alts[0].Items[0].Item
	assert.Equal(ast.KindNot, notItem.Kind)
	assert.Equal(ast.KindAnyChar, notItem.Sub.Kind)
}

func Test_Parse_OrderedChoiceAndGrouping(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g, err := New(`E <- '+' / '-' / (A B)`, "t.peg").Parse()
	require.NoError(err)
	require.Len(g.Rules, 1)
	alts := g.Rules[0].Expr.Alts
	require.Len(alts, 3)
	assert.Equal(ast.KindString, alts[0].Items[0].Item.Kind)
	assert.Equal(ast.KindString, alts[1].Items[0].Item.Kind)
	assert.Equal(ast.KindGroup, alts[2].Items[0].Item.Kind)
	require.Len(alts[2].Items[0].Item.Group.Alts, 1)
	require.Len(alts[2].Items[0].Item.Group.Alts[0].Items, 2)
}

func Test_Parse_NamedItemsAndLookahead(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g, err := New(`A <- i:Digit+ &'.' !EOF`, "t.peg").Parse()
	require.NoError(err)
	items := g.Rules[0].Expr.Alts[0].Items
	require.Len(items, 3)

	assert.Equal("i", items[0].MetaName.Name)
	assert.Equal(ast.KindOneOrMore, items[0].Item.Kind)
	assert.Equal(ast.KindId, items[0].Item.Sub.Kind)

	assert.Equal(ast.KindAnd, items[1].Item.Kind)
	assert.Equal(ast.KindString, items[1].Item.Sub.Kind)
	assert.Equal(".", items[1].Item.Sub.StringVal)

	assert.Equal(ast.KindNot, items[2].Item.Kind)
}

func Test_Parse_Repetition(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g, err := New(`A <- [0-9]{2,4} B{3}`, "t.peg").Parse()
	require.NoError(err)
	items := g.Rules[0].Expr.Alts[0].Items
	require.Len(items, 2)

	rep1 := items[0].Item
	assert.Equal(ast.KindRepetition, rep1.Kind)
	assert.Equal(2, rep1.RepFirst)
	require.NotNil(rep1.RepLast)
	assert.Equal(4, *rep1.RepLast)
	assert.Equal(ast.KindClass, rep1.Sub.Kind)

	rep2 := items[1].Item
	assert.Equal(3, rep2.RepFirst)
	assert.Nil(rep2.RepLast)
}

func Test_Parse_MetaRuleReferenceAndInline(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	src := `
$double { return x * 2 }
A <- x:Digit $double
B <- y:Digit ${ return y }
`
	g, err := New(src, "t.peg").Parse()
	require.NoError(err)
	require.Len(g.MetaRules, 1)
	assert.Equal("double", g.MetaRules[0].Id.Name)
	assert.Equal(" return x * 2 ", g.MetaRules[0].Body)

	aAlt := g.Rules[0].Expr.Alts[0]
	require.NotNil(aAlt.MetaRule)
	assert.Equal("double", aAlt.MetaRule.Id.Name)
	assert.Empty(aAlt.MetaRule.Body) // unresolved reference; AssignMetaRules fills this in

	bAlt := g.Rules[1].Expr.Alts[0]
	require.NotNil(bAlt.MetaRule)
	assert.Equal(" return y ", bAlt.MetaRule.Body)
}

func Test_Parse_CharEscapes(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g, err := New(`A <- "\n\t\\\'A" [\60-\172]`, "t.peg").Parse()
	require.NoError(err)
	items := g.Rules[0].Expr.Alts[0].Items
	require.Len(items, 2)
	assert.Equal("\n\t\\'A", items[0].Item.StringVal)

	class := items[1].Item
	require.Len(class.ClassVal, 1)
	assert.Equal(ast.Char('0'), class.ClassVal[0].First)
	require.NotNil(class.ClassVal[0].Last)
	assert.Equal(ast.Char('z'), *class.ClassVal[0].Last)
}

func Test_Parse_SyntaxErrorHasPosition(t *testing.T) {
	require := require.New(t)

	_, err := New("A <- (B", "t.peg").Parse()
	require.Error(err)
	var synErr *SyntaxError
	require.ErrorAs(err, &synErr)
	assert.Equal(t, "t.peg", synErr.File)
	assert.Equal(t, 1, synErr.Line)
	assert.Equal(t, 8, synErr.Column)
}

func Test_Parse_EmptyAltIsPermitted(t *testing.T) {
	require := require.New(t)

	g, err := New(`A <- 'x' / `, "t.peg").Parse()
	require.NoError(err)
	alts := g.Rules[0].Expr.Alts
	require.Len(alts, 2)
	require.Empty(alts[1].Items)
}
