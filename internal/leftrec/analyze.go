package leftrec

import "github.com/polygen-project/polygen/internal/ast"

// Result is what Analyze hands back to internal/modifier's ComputeLR pass.
// It is currently empty: an earlier revision rejected any head rule with
// no local seed alternative as "unbounded", but that check was wrong for
// indirect left recursion (spec.md §7 scenario 4: "A <- B 'a'; B <- C 'b';
// C <- A 'c' / D 'c'; D <- 'd'" classifies every one of head A's
// alternatives as a grower, since A is never the first rule reached
// leaving the SCC through A itself — the seed instead comes from
// bootstrapping a grower through C's non-recursive "D 'c'" alternative).
// The reference implementation (original_source/polygen/modifier.py,
// modifier/leftrec.py) never rejects a no-seed head at all; the runtime's
// SeedGrow (internal/runtime/runtime.go) now bootstraps the seed the same
// way, so there is nothing left for this pass to flag as fatal.
type Result struct{}

// Analyze runs the full left-recursion analysis over g and annotates its
// Rules/Alts in place: Rule.Nullable, Rule.Head, Rule.LeftRec, and
// Alt.Grower. g.Entry must already be set (FindEntryRule runs before
// ComputeLR in the modifier pipeline).
func Analyze(g *ast.Grammar) Result {
	ComputeNullability(g)

	if g.Entry == nil {
		return Result{}
	}

	graph := BuildFirstReferenceGraph(g)
	sccs := ComputeSCCs(graph, g.Entry.Id.Name)

	for _, scc := range sccs {
		head := g.RuleById(scc.Head)
		if head == nil {
			continue
		}
		members := make([]*ast.Rule, 0, len(scc.Members))
		for _, name := range scc.Members {
			if r := g.RuleById(name); r != nil {
				members = append(members, r)
			}
		}

		astSCC := &ast.SCC{Head: head, Members: members}
		head.Head = true
		for _, m := range members {
			if m.LeftRec == nil {
				m.LeftRec = &ast.LeftRecInfo{}
			}
			m.LeftRec.Chains = append(m.LeftRec.Chains, astSCC)
		}

		classifyAlts(g, head, members)
	}

	return Result{}
}

// classifyAlts marks each of head's Alts as a grower iff its first
// non-nullable-prefix item references a rule in the SCC (spec.md §4.4(c)).
// A single-member SCC is a direct self-loop: there is no "other" member to
// compare against, so the head itself is the comparison target.
func classifyAlts(g *ast.Grammar, head *ast.Rule, members []*ast.Rule) {
	targets := map[string]bool{}
	if len(members) == 1 {
		targets[head.Id.Name] = true
	} else {
		for _, m := range members {
			if m.Id.Name != head.Id.Name {
				targets[m.Id.Name] = true
			}
		}
	}

	if head.Expr == nil {
		return
	}
	for _, a := range head.Expr.Alts {
		blocking := firstBlockingItem(g, a)
		if blocking == nil {
			a.Grower = false
			continue
		}
		ref, ok := itemRuleRef(blocking)
		a.Grower = ok && targets[ref]
	}
}

// firstBlockingItem returns the first item in a that is not nullable (the
// point at which the alternative's "nullable prefix" ends), or nil if
// every item is nullable.
func firstBlockingItem(g *ast.Grammar, a *ast.Alt) *ast.Item {
	for _, ni := range a.Items {
		if ni.Item == nil {
			continue
		}
		if !itemNullable(g, ni.Item) {
			return ni.Item
		}
	}
	return nil
}
