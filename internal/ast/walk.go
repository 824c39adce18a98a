package ast

// Path is the explicit back-reference stack spec.md §9 calls for in place
// of parent pointers: "Passes navigate parent context via an explicit path
// stack (current Grammar / Rule / Alt / NamedItem) pushed on entry and
// popped on exit; nodes do not hold parent pointers." Frames accumulate as
// the walk descends: at rule depth only Rule is set, at alt depth Rule and
// Alt, at item depth all three; deeper frames are only pushed once their
// enclosing node has been entered.
type Path struct {
	Grammar   *Grammar
	Rule      *Rule
	Alt       *Alt
	NamedItem *NamedItem
}

// Visitor receives post-order callbacks during a Walk. Each Visit* method
// returns true if it mutated the tree in a way that should cause the
// driving pass to record "a change occurred this traversal" (used by
// internal/modifier's fixpoint loop). A nil method is treated as a no-op
// that reports no change.
type Visitor struct {
	VisitGrammar   func(p Path, g *Grammar) bool
	VisitRule      func(p Path, r *Rule) bool
	VisitExpr      func(p Path, e *Expr) bool
	VisitAlt       func(p Path, a *Alt) bool
	VisitNamedItem func(p Path, ni *NamedItem) bool
	VisitItem      func(p Path, it *Item) bool
}

// Walk performs one post-order traversal of g, invoking v's hooks as each
// node is left (children before parents), and returns whether any hook
// reported a change. internal/modifier's fixpoint driver calls Walk
// repeatedly until a pass reports no further changes.
func Walk(g *Grammar, v Visitor) (changed bool) {
	path := Path{Grammar: g}

	for _, r := range g.Rules {
		rulePath := path
		rulePath.Rule = r

		if r.Expr != nil {
			if walkExpr(rulePath, r.Expr, v) {
				changed = true
			}
		}

		if v.VisitRule != nil && v.VisitRule(rulePath, r) {
			changed = true
		}
	}

	if v.VisitGrammar != nil && v.VisitGrammar(path, g) {
		changed = true
	}

	return changed
}

func walkExpr(p Path, e *Expr, v Visitor) (changed bool) {
	for _, a := range e.Alts {
		altPath := p
		altPath.Alt = a

		for _, ni := range a.Items {
			niPath := altPath
			niPath.NamedItem = ni

			if ni.Item != nil {
				if walkItem(niPath, ni.Item, v) {
					changed = true
				}
			}

			if v.VisitNamedItem != nil && v.VisitNamedItem(niPath, ni) {
				changed = true
			}
		}

		if v.VisitAlt != nil && v.VisitAlt(altPath, a) {
			changed = true
		}
	}

	if v.VisitExpr != nil && v.VisitExpr(p, e) {
		changed = true
	}

	return changed
}

// walkItem descends into unary/grouping sub-items before visiting it
// itself, so a visitor that replaces it (e.g. ReplaceNestedExprs
// rewriting a KindGroup to a KindId) sees a fully-processed subtree first.
func walkItem(p Path, it *Item, v Visitor) (changed bool) {
	if it.Sub != nil {
		if walkItem(p, it.Sub, v) {
			changed = true
		}
	}
	if it.Group != nil {
		if walkExpr(p, it.Group, v) {
			changed = true
		}
	}

	if v.VisitItem != nil && v.VisitItem(p, it) {
		changed = true
	}

	return changed
}

// EnclosingRule scans outward from p for the Rule frame currently active,
// returning nil if p was captured outside of any rule's traversal.
func (p Path) EnclosingRule() *Rule { return p.Rule }

// EnclosingAlt scans outward from p for the Alt frame currently active.
func (p Path) EnclosingAlt() *Alt { return p.Alt }
