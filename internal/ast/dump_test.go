package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGrammar() *Grammar {
	g := &Grammar{}
	zero := 0
	entry := &Rule{
		Id:    Id{Name: "G"},
		Entry: true,
		Expr: &Expr{Alts: []*Alt{
			{
				Nullable: false,
				Items: []*NamedItem{
					{MetaName: Id{Name: "a"}, Item: NewString("abc", nil)},
					{MetaName: Id{Name: "_"}, Item: NewUnary(KindZeroOrOne, NewRepetition(NewChar('x', nil), 0, &zero, nil), nil)},
				},
				MetaRule: &MetaRule{Body: "return a"},
			},
		}},
	}
	g.AddRule(entry)
	g.Entry = entry
	return g
}

func Test_Snapshot_RoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := sampleGrammar()
	snap := ToSnapshot(g)

	data, err := snap.ToJSON()
	require.NoError(err)
	require.NotEmpty(data)

	var snap2 Snapshot
	require.NoError(snap2.UnmarshalBinary(data))

	g2 := FromSnapshot(snap2)
	assert.Equal(ToSnapshot(g2), snap)
}

func Test_Snapshot_PreservesLeftRecChains(t *testing.T) {
	assert := assert.New(t)

	a := &Rule{Id: Id{Name: "A"}, Expr: &Expr{}}
	b := &Rule{Id: Id{Name: "B"}, Expr: &Expr{}}
	a.Head = true
	a.LeftRec = &LeftRecInfo{Chains: []*SCC{{Head: a, Members: []*Rule{a, b}}}}

	g := &Grammar{Rules: []*Rule{a, b}, Entry: a}

	snap := ToSnapshot(g)
	require := snap.Rules[0]
	assert.Len(require.LeftRec, 1)
	assert.Equal("A", require.LeftRec[0].Head)
	assert.Equal([]string{"A", "B"}, require.LeftRec[0].Members)

	g2 := FromSnapshot(snap)
	assert.Equal(a.Id.Name, g2.RuleById("A").LeftRec.Chains[0].Head.Id.Name)
	assert.Equal([]string{"A", "B"}, []string{
		g2.RuleById("A").LeftRec.Chains[0].Members[0].Id.Name,
		g2.RuleById("A").LeftRec.Chains[0].Members[1].Id.Name,
	})
}
