// Package leftrec implements the Left-Recursion Analyzer (spec.md §4.4):
// a nullability fixpoint, a first-reference graph, Tarjan-style
// strongly-connected-component detection walked from the entry rule, and
// seed/grower classification of every head rule's alternatives.
//
// There is no teacher or pack file that does exactly this analysis — the
// closest the corpus comes is internal/ictiobus/parse/lalr.go's LALR table
// construction, which also builds item-set graphs and closes them to a
// fixpoint — but Tarjan's SCC algorithm itself is standard graph theory
// rather than something to imitate line-by-line. The ordered-set/ordered-map
// discipline (internal/oset) and the single-threaded, in-place-mutation
// style of the rest of this module are carried over regardless.
package leftrec

import (
	"github.com/polygen-project/polygen/internal/ast"
	"github.com/polygen-project/polygen/internal/oset"
)

// ComputeNullability runs the two-sweep nullability fixpoint spec.md
// §4.4(a) calls for: "Iterate two full sweeps; the design tolerates the
// cheap double-pass rather than building a dependency queue."
func ComputeNullability(g *ast.Grammar) {
	for sweep := 0; sweep < 2; sweep++ {
		for _, r := range g.Rules {
			r.Nullable = ruleNullable(g, r)
		}
	}
}

func ruleNullable(g *ast.Grammar, r *ast.Rule) bool {
	if r.Expr == nil {
		return true
	}
	nullable := false
	for _, a := range r.Expr.Alts {
		a.Nullable = altNullable(g, a)
		if a.Nullable {
			nullable = true
		}
	}
	return nullable
}

func altNullable(g *ast.Grammar, a *ast.Alt) bool {
	for _, ni := range a.Items {
		if ni.Item == nil || !itemNullable(g, ni.Item) {
			return false
		}
	}
	return true
}

func itemNullable(g *ast.Grammar, it *ast.Item) bool {
	if it.Kind == ast.KindId {
		target := g.RuleById(it.IdRef.Name)
		return target != nil && target.Nullable
	}
	return it.IsNullableLeaf()
}

// itemRuleRef returns the rule Id an item would attempt to match first, if
// any. And/Not lookaheads and literal (Char/String/AnyChar/Class) items
// contribute nothing, per spec.md §4.4(b): "lookaheads and literal items
// contribute nothing (they are not rules)". Quantifier/repetition wrappers
// are transparent: whatever they wrap is what gets attempted first.
func itemRuleRef(it *ast.Item) (string, bool) {
	switch it.Kind {
	case ast.KindId:
		return it.IdRef.Name, true
	case ast.KindZeroOrOne, ast.KindZeroOrMore, ast.KindOneOrMore, ast.KindRepetition:
		if it.Sub == nil {
			return "", false
		}
		return itemRuleRef(it.Sub)
	default:
		return "", false
	}
}

// BuildFirstReferenceGraph builds, for each Rule, the ordered set of rule
// Ids that could appear as the first consumed symbol (spec.md §4.4(b)).
// Nullability must already be computed (ComputeNullability) before calling
// this.
func BuildFirstReferenceGraph(g *ast.Grammar) map[string][]string {
	graph := make(map[string][]string, len(g.Rules))
	for _, r := range g.Rules {
		refs := oset.NewSet[string]()
		if r.Expr != nil {
			for _, a := range r.Expr.Alts {
				for _, ni := range a.Items {
					it := ni.Item
					if it == nil {
						continue
					}
					if ref, ok := itemRuleRef(it); ok {
						refs.Add(ref)
					}
					if !itemNullable(g, it) {
						break
					}
				}
			}
		}
		graph[r.Id.Name] = refs.Elements()
	}
	return graph
}

// ComputeSCCs runs a Tarjan-style strongly-connected-components search
// over graph, starting from entry, and returns every non-trivial SCC
// (including a trivial self-loop) in the order Tarjan completes them, so an
// SCC reachable from another comes before it, per spec.md §4.4(c).
func ComputeSCCs(graph map[string][]string, entry string) []*sccResult {
	t := &tarjan{
		graph:   graph,
		index:   map[string]int{},
		low:     map[string]int{},
		onStack: map[string]bool{},
	}
	if _, ok := graph[entry]; ok {
		t.strongConnect(entry)
	}

	var out []*sccResult
	for _, members := range t.sccs {
		selfLoop := len(members) == 1 && containsStr(graph[members[0]], members[0])
		if len(members) > 1 || selfLoop {
			out = append(out, &sccResult{Head: members[0], Members: members})
		}
	}
	return out
}

// sccResult is the string-keyed intermediate form ComputeSCCs returns;
// leftrec.Analyze resolves Head/Members into *ast.Rule pointers and
// attaches them to the Grammar.
type sccResult struct {
	Head    string
	Members []string
}

func containsStr(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

type tarjan struct {
	graph   map[string][]string
	index   map[string]int
	low     map[string]int
	onStack map[string]bool
	stack   []string
	counter int
	sccs    [][]string
}

func (t *tarjan) strongConnect(v string) {
	t.index[v] = t.counter
	t.low[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.graph[v] {
		if _, visited := t.index[w]; !visited {
			t.strongConnect(w)
			if t.low[w] < t.low[v] {
				t.low[v] = t.low[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.low[v] {
				t.low[v] = t.index[w]
			}
		}
	}

	if t.low[v] == t.index[v] {
		var popped []string
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			popped = append(popped, w)
			if w == v {
				break
			}
		}
		// popped is in pop order (most-recently-pushed first, v last);
		// reverse so Members[0] == v, the node the outer traversal first
		// entered this component through, matching "head = first rule
		// encountered in the SCC".
		for i, j := 0, len(popped)-1; i < j; i, j = i+1, j-1 {
			popped[i], popped[j] = popped[j], popped[i]
		}
		t.sccs = append(t.sccs, popped)
	}
}
