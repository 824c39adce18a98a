package modifier

import (
	"github.com/polygen-project/polygen/internal/ast"
	"github.com/polygen-project/polygen/internal/oset"
)

// CheckUndefinedRules collects every Id referenced by an item and every
// defined Rule Id in a single traversal, then checks the former is a
// subset of the latter (spec.md §4.3 pass 1). One sweep is always enough:
// Apply reports done=true unconditionally.
type CheckUndefinedRules struct {
	refs *oset.Map[string, *ast.Item]
}

func (p *CheckUndefinedRules) Name() string { return "checkundefinedrules" }

func (p *CheckUndefinedRules) NewTraversal(ctx *Context) ast.Visitor {
	p.refs = oset.NewMap[string, *ast.Item]()
	return ast.Visitor{
		VisitItem: func(_ ast.Path, it *ast.Item) bool {
			if it.Kind == ast.KindId {
				p.refs.Set(it.IdRef.Name, it)
			}
			return false
		},
	}
}

func (p *CheckUndefinedRules) Apply(ctx *Context) bool {
	defined := make(map[string]bool, len(ctx.Grammar.Rules))
	for _, r := range ctx.Grammar.Rules {
		defined[r.Id.Name] = true
	}
	for _, name := range p.refs.Keys() {
		if !defined[name] {
			it, _ := p.refs.Get(name)
			ctx.Diags.addError(&UndefinedReferenceError{Name: name, Info: it.Info})
		}
	}
	return true
}

// CheckRedefinedRules is fatal the moment two Rules in the grammar share an
// Id (spec.md §4.3 pass 2).
type CheckRedefinedRules struct{}

func (p *CheckRedefinedRules) Name() string { return "checkredefinedrules" }

func (p *CheckRedefinedRules) NewTraversal(ctx *Context) ast.Visitor {
	return ast.Visitor{}
}

func (p *CheckRedefinedRules) Apply(ctx *Context) bool {
	seen := map[string]*ast.Rule{}
	for _, r := range ctx.Grammar.Rules {
		if first, ok := seen[r.Id.Name]; ok {
			ctx.Diags.addError(&RedefinedRuleError{Name: r.Id.Name, First: first.Info, Again: r.Info})
			continue
		}
		seen[r.Id.Name] = r
	}
	return true
}

// FindEntryRule requires exactly one Rule to carry Entry=true, sets
// Grammar.Entry to it (spec.md §4.3 pass 4).
type FindEntryRule struct{}

func (p *FindEntryRule) Name() string { return "findentryrule" }

func (p *FindEntryRule) NewTraversal(ctx *Context) ast.Visitor {
	return ast.Visitor{}
}

func (p *FindEntryRule) Apply(ctx *Context) bool {
	var entries []*ast.Rule
	for _, r := range ctx.Grammar.Rules {
		if r.Entry {
			entries = append(entries, r)
		}
	}
	switch len(entries) {
	case 0:
		ctx.Diags.addError(&UndefinedEntryError{})
	case 1:
		ctx.Grammar.Entry = entries[0]
	default:
		names := make([]string, len(entries))
		for i, r := range entries {
			names[i] = r.Id.Name
		}
		ctx.Diags.addError(&RedefinedEntryError{Names: names})
	}
	return true
}

// ValidateRangesAndReps collects every Range or Repetition with last <
// first across the whole grammar before reporting; spec.md §4.3 pass 9
// treats any non-empty collection as fatal, so every instance is surfaced
// in one pass rather than stopping at the first.
type ValidateRangesAndReps struct{}

func (p *ValidateRangesAndReps) Name() string { return "validaterangesandreps" }

func (p *ValidateRangesAndReps) NewTraversal(ctx *Context) ast.Visitor {
	return ast.Visitor{
		VisitItem: func(_ ast.Path, it *ast.Item) bool {
			switch it.Kind {
			case ast.KindClass:
				for _, r := range it.ClassVal {
					if r.Last != nil && *r.Last < r.First {
						ctx.Diags.addError(&InvalidRangeError{
							First: rune(r.First), Last: rune(*r.Last), Info: it.Info,
						})
					}
				}
			case ast.KindRepetition:
				if it.RepLast != nil && *it.RepLast < it.RepFirst {
					ctx.Diags.addError(&InvalidRepetitionError{
						First: it.RepFirst, Last: *it.RepLast, Info: it.Info,
					})
				}
			}
			return false
		},
	}
}

func (p *ValidateRangesAndReps) Apply(ctx *Context) bool { return true }
