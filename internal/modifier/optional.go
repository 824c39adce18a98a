package modifier

import (
	"fmt"

	"github.com/polygen-project/polygen/internal/ast"
)

func enabled(ctx *Context, passName string) bool {
	return ctx.Options[passName].Bool("enabled", false)
}

func freshRuleName(g *ast.Grammar, base string) string {
	name := base
	for n := 1; g.RuleById(name) != nil; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	return name
}

// ExpandClass turns a Class item into an Expr of single-Char alternatives,
// for backends that would rather not special-case character ranges as a
// primitive (spec.md §4.3's optional passes). Disabled unless
// ctx.Options["expandclass"]["enabled"] is true.
type ExpandClass struct {
	classes []*ast.Item
}

func (p *ExpandClass) Name() string { return "expandclass" }

func (p *ExpandClass) NewTraversal(ctx *Context) ast.Visitor {
	if !enabled(ctx, p.Name()) {
		return ast.Visitor{}
	}
	p.classes = nil
	return ast.Visitor{
		VisitItem: func(_ ast.Path, it *ast.Item) bool {
			if it.Kind == ast.KindClass {
				p.classes = append(p.classes, it)
			}
			return false
		},
	}
}

func (p *ExpandClass) Apply(ctx *Context) bool {
	if !enabled(ctx, p.Name()) {
		return true
	}
	for _, it := range p.classes {
		ranges := it.ClassVal
		name := freshRuleName(ctx.Grammar, "Class__GEN")
		var alts []*ast.Alt
		for _, r := range ranges {
			for c := r.Lo(); c <= r.Hi(); c++ {
				alts = append(alts, &ast.Alt{Items: []*ast.NamedItem{{Item: ast.NewChar(c, it.Info)}}})
			}
		}
		ctx.Grammar.AddRule(&ast.Rule{Id: ast.Id{Name: name}, Expr: &ast.Expr{Alts: alts}, Info: it.Info})

		it.Kind = ast.KindId
		it.IdRef = ast.Id{Name: name}
		it.ClassVal = nil
	}
	p.classes = nil
	return true
}

// ReplaceRep turns a bounded Repetition(item, n, m) into a synthesized rule
// matching n mandatory copies of item followed by m-n optional copies
// (spec.md §4.3's optional passes: "n copies of item followed by an
// optional group covering the remaining m-n"; a repetition with only
// `first` expands to `first` copies). The Repetition item is replaced with
// a reference to that rule, the same way ReplaceNestedExprs externalizes a
// KindGroup, so no KindGroup item is ever reintroduced this late in the
// pipeline. Disabled unless ctx.Options["replacerep"]["enabled"] is true.
type ReplaceRep struct {
	reps []*ast.Item
}

func (p *ReplaceRep) Name() string { return "replacerep" }

func (p *ReplaceRep) NewTraversal(ctx *Context) ast.Visitor {
	if !enabled(ctx, p.Name()) {
		return ast.Visitor{}
	}
	p.reps = nil
	return ast.Visitor{
		VisitItem: func(_ ast.Path, it *ast.Item) bool {
			if it.Kind == ast.KindRepetition {
				p.reps = append(p.reps, it)
			}
			return false
		},
	}
}

func (p *ReplaceRep) Apply(ctx *Context) bool {
	if !enabled(ctx, p.Name()) {
		return true
	}
	for _, it := range p.reps {
		sub, n, last := it.Sub, it.RepFirst, it.RepLast
		m := n
		if last != nil {
			m = *last
		}

		var items []*ast.NamedItem
		for i := 0; i < n; i++ {
			items = append(items, &ast.NamedItem{Item: cloneItem(sub)})
		}
		for i := n; i < m; i++ {
			items = append(items, &ast.NamedItem{Item: ast.NewUnary(ast.KindZeroOrOne, cloneItem(sub), sub.Info)})
		}

		name := freshRuleName(ctx.Grammar, fmt.Sprintf("Rep__GEN_%d_%d", n, m))
		ctx.Grammar.AddRule(&ast.Rule{
			Id:   ast.Id{Name: name},
			Expr: &ast.Expr{Alts: []*ast.Alt{{Items: items}}},
			Info: it.Info,
		})

		it.Kind = ast.KindId
		it.IdRef = ast.Id{Name: name}
		it.Sub = nil
		it.RepFirst = 0
		it.RepLast = nil
	}
	p.reps = nil
	return true
}

func cloneItem(it *ast.Item) *ast.Item {
	if it == nil {
		return nil
	}
	cp := *it
	cp.Sub = cloneItem(it.Sub)
	if it.ClassVal != nil {
		cp.ClassVal = append([]ast.Range(nil), it.ClassVal...)
	}
	return &cp
}

// EliminateAnd rewrites every `&E` (And) item to `!(!E)` (Not(Not(E))),
// following original_source/polygen/tree_modifier.py's EliminateAnd
// exactly: some backends only special-case negative lookahead, so positive
// lookahead is expressed in terms of it. Disabled unless
// ctx.Options["eliminateand"]["enabled"] is true; spec.md's distilled
// pipeline never asks for this pass, but the original implementation
// carries it and it costs nothing to offer.
type EliminateAnd struct{}

func (p *EliminateAnd) Name() string { return "eliminateand" }

func (p *EliminateAnd) NewTraversal(ctx *Context) ast.Visitor {
	if !enabled(ctx, p.Name()) {
		return ast.Visitor{}
	}
	return ast.Visitor{
		VisitItem: func(_ ast.Path, it *ast.Item) bool {
			if it.Kind != ast.KindAnd {
				return false
			}
			inner := ast.NewUnary(ast.KindNot, it.Sub, it.Info)
			it.Kind = ast.KindNot
			it.Sub = inner
			return true
		},
	}
}

func (p *EliminateAnd) Apply(ctx *Context) bool { return true }
