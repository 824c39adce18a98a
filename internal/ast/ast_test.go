package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Item_IsNullableLeaf(t *testing.T) {
	assert := assert.New(t)

	assert.True(NewUnary(KindZeroOrOne, NewChar('a', nil), nil).IsNullableLeaf())
	assert.True(NewUnary(KindZeroOrMore, NewChar('a', nil), nil).IsNullableLeaf())
	assert.False(NewUnary(KindOneOrMore, NewChar('a', nil), nil).IsNullableLeaf())
	assert.True(NewUnary(KindAnd, NewChar('a', nil), nil).IsNullableLeaf())
	assert.True(NewUnary(KindNot, NewChar('a', nil), nil).IsNullableLeaf())
	assert.True(NewString("", nil).IsNullableLeaf())
	assert.False(NewString("x", nil).IsNullableLeaf())
	assert.True(NewClass(nil, nil).IsNullableLeaf())
	assert.False(NewChar('a', nil).IsNullableLeaf())
	assert.False(NewAnyChar(nil).IsNullableLeaf())
	// Id nullability depends on the referenced rule and is never decided
	// here; the fixpoint in internal/leftrec resolves it.
	assert.False(NewId(Id{Name: "X"}, nil).IsNullableLeaf())

	zero := 0
	assert.True(NewRepetition(NewChar('a', nil), 0, &zero, nil).IsNullableLeaf())
	one := 1
	assert.False(NewRepetition(NewChar('a', nil), 1, &one, nil).IsNullableLeaf())
}

func Test_Range_ContainsAndHi(t *testing.T) {
	assert := assert.New(t)

	single := Range{First: 'a'}
	assert.Equal(Char('a'), single.Hi())
	assert.True(single.Contains('a'))
	assert.False(single.Contains('b'))

	last := Char('z')
	span := Range{First: 'a', Last: &last}
	assert.Equal(Char('z'), span.Hi())
	assert.True(span.Contains('m'))
	assert.False(span.Contains('A'))
}

func Test_Walk_VisitsItemsAltsRulesInPostOrder(t *testing.T) {
	assert := assert.New(t)

	var order []string

	rule := &Rule{
		Id: Id{Name: "R"},
		Expr: &Expr{Alts: []*Alt{
			{Items: []*NamedItem{
				{Item: NewChar('a', nil)},
				{Item: NewId(Id{Name: "Other"}, nil)},
			}},
		}},
	}
	g := &Grammar{Rules: []*Rule{rule}}

	Walk(g, Visitor{
		VisitItem: func(p Path, it *Item) bool {
			order = append(order, "item:"+it.Kind.String())
			assert.Equal("R", p.Rule.Id.Name)
			return false
		},
		VisitNamedItem: func(p Path, ni *NamedItem) bool {
			order = append(order, "nameditem")
			return false
		},
		VisitAlt: func(p Path, a *Alt) bool {
			order = append(order, "alt")
			return false
		},
		VisitRule: func(p Path, r *Rule) bool {
			order = append(order, "rule:"+r.Id.Name)
			return false
		},
	})

	assert.Equal([]string{
		"item:Char", "nameditem",
		"item:Id", "nameditem",
		"alt",
		"rule:R",
	}, order)
}

func Test_Walk_ReportsChange(t *testing.T) {
	assert := assert.New(t)

	rule := &Rule{Id: Id{Name: "R"}, Expr: &Expr{Alts: []*Alt{{}}}}
	g := &Grammar{Rules: []*Rule{rule}}

	changed := Walk(g, Visitor{
		VisitAlt: func(p Path, a *Alt) bool { return true },
	})
	assert.True(changed)

	changed = Walk(g, Visitor{})
	assert.False(changed)
}
