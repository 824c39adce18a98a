package modifier

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/rangetable"

	"github.com/polygen-project/polygen/internal/ast"
)

// ReplaceNestedExprs lifts every parenthesized sub-expression (parsed as a
// KindGroup item) out to a freshly synthesized rule, replacing the group
// item in place with a KindId reference to it (spec.md §4.3 pass 3).
// Because ast.Walk visits a KindGroup item's inner Expr before the item
// itself (post-order), nested groups are always lifted from the inside out
// within a single traversal; a generated rule's body can therefore never
// itself contain a KindGroup by the time it is synthesized.
type ReplaceNestedExprs struct {
	counter map[string]int
	dedup   map[string]map[string]*ast.Rule
}

func (p *ReplaceNestedExprs) Name() string { return "replacenestedexprs" }

func (p *ReplaceNestedExprs) NewTraversal(ctx *Context) ast.Visitor {
	if p.counter == nil {
		p.counter = map[string]int{}
		p.dedup = map[string]map[string]*ast.Rule{}
	}
	return ast.Visitor{
		VisitItem: func(path ast.Path, it *ast.Item) bool {
			if it.Kind != ast.KindGroup {
				return false
			}
			parent := path.EnclosingRule()
			if parent == nil {
				return false
			}

			key := ast.ExprKey(it.Group)
			byKey, ok := p.dedup[parent.Id.Name]
			if !ok {
				byKey = map[string]*ast.Rule{}
				p.dedup[parent.Id.Name] = byKey
			}
			gen, ok := byKey[key]
			if !ok {
				gen = p.synthesize(ctx, parent, it.Group)
				byKey[key] = gen
			}

			it.Kind = ast.KindId
			it.IdRef = ast.Id{Name: gen.Id.Name}
			it.Group = nil
			return true
		},
	}
}

func (p *ReplaceNestedExprs) synthesize(ctx *Context, parent *ast.Rule, e *ast.Expr) *ast.Rule {
	p.counter[parent.Id.Name]++
	name := fmt.Sprintf("%s__GEN_%d", parent.Id.Name, p.counter[parent.Id.Name])
	// Collision against a real rule name the grammar author happened to
	// pick is vanishingly unlikely but not impossible (especially once
	// @include has pulled in rules from another file); fall back to a
	// uuid-suffixed name the same way the teacher mints session ids in
	// server/dao/sqlite/sessions.go.
	for ctx.Grammar.RuleById(name) != nil {
		name = fmt.Sprintf("%s__GEN_%s", parent.Id.Name, uuid.NewString())
	}
	gen := &ast.Rule{Id: ast.Id{Name: name}, Expr: e, Info: e.Info}
	ctx.Grammar.AddRule(gen)
	return gen
}

func (p *ReplaceNestedExprs) Apply(ctx *Context) bool { return true }

// CreateAnyChar is only active in strict mode (ctx.Options["createanychar"]
// "strict" = true); non-strict is a no-op, per spec.md §4.3 pass 5, since
// the generated runtime's expect_char primitive already matches any char
// when called with no argument. In strict mode it collects every literal
// Char appearing anywhere in the grammar (string contents, class ranges,
// bare Char items), folds them into merged Ranges using
// golang.org/x/text/unicode/rangetable the way a Unicode-table-driven
// target would want them, synthesizes `AnyChar__GEN <- [<ranges>]`, and
// rewrites every KindAnyChar item to reference it.
type CreateAnyChar struct {
	chars  map[rune]bool
	anyChs []*ast.Item
}

func (p *CreateAnyChar) Name() string { return "createanychar" }

func (p *CreateAnyChar) strict(ctx *Context) bool {
	return ctx.Options[p.Name()].Bool("strict", false)
}

func (p *CreateAnyChar) NewTraversal(ctx *Context) ast.Visitor {
	if !p.strict(ctx) {
		return ast.Visitor{}
	}
	p.chars = map[rune]bool{}
	p.anyChs = nil
	return ast.Visitor{
		VisitItem: func(_ ast.Path, it *ast.Item) bool {
			switch it.Kind {
			case ast.KindString:
				for _, r := range it.StringVal {
					p.chars[r] = true
				}
			case ast.KindChar:
				p.chars[rune(it.CharVal)] = true
			case ast.KindClass:
				for _, rg := range it.ClassVal {
					for c := rg.Lo(); c <= rg.Hi(); c++ {
						p.chars[rune(c)] = true
					}
				}
			case ast.KindAnyChar:
				p.anyChs = append(p.anyChs, it)
			}
			return false
		},
	}
}

func (p *CreateAnyChar) Apply(ctx *Context) bool {
	if !p.strict(ctx) || len(p.anyChs) == 0 {
		return true
	}

	runes := make([]rune, 0, len(p.chars))
	for r := range p.chars {
		runes = append(runes, r)
	}
	// rangetable.New sorts the input and coalesces evenly spaced runs into a
	// single R16/R32 entry each. A stride-1 entry is a run of adjacent code
	// points and becomes one Range; any other stride is split back into
	// single-character Ranges so no uncollected code point is covered.
	table := rangetable.New(runes...)

	var ranges []ast.Range
	addRun := func(lo, hi, stride rune) {
		if stride == 1 {
			ranges = append(ranges, ast.Range{First: ast.Char(lo), Last: charPtr(ast.Char(hi))})
			return
		}
		for c := lo; c <= hi; c += stride {
			ranges = append(ranges, ast.Range{First: ast.Char(c), Last: charPtr(ast.Char(c))})
		}
	}
	for _, r16 := range table.R16 {
		addRun(rune(r16.Lo), rune(r16.Hi), rune(r16.Stride))
	}
	for _, r32 := range table.R32 {
		addRun(rune(r32.Lo), rune(r32.Hi), rune(r32.Stride))
	}

	name := "AnyChar__GEN"
	for ctx.Grammar.RuleById(name) != nil {
		name = "AnyChar__GEN_" + uuid.NewString()
	}
	gen := &ast.Rule{
		Id:   ast.Id{Name: name},
		Expr: &ast.Expr{Alts: []*ast.Alt{{Items: []*ast.NamedItem{{Item: ast.NewClass(ranges, nil)}}}}},
	}
	ctx.Grammar.AddRule(gen)

	for _, it := range p.anyChs {
		it.Kind = ast.KindId
		it.IdRef = ast.Id{Name: name}
	}
	return true
}

func charPtr(c ast.Char) *ast.Char { return &c }

// IgnoreRules forces every NamedItem referencing a Rule marked Ignore to
// the "_" sentinel metaname, unless the grammar author already gave it an
// explicit name (spec.md §4.3 pass 6).
type IgnoreRules struct{}

func (p *IgnoreRules) Name() string { return "ignorerules" }

func (p *IgnoreRules) NewTraversal(ctx *Context) ast.Visitor {
	return ast.Visitor{
		VisitNamedItem: func(_ ast.Path, ni *ast.NamedItem) bool {
			if ni.Item == nil || ni.Item.Kind != ast.KindId {
				return false
			}
			target := ctx.Grammar.RuleById(ni.Item.IdRef.Name)
			if target == nil || !target.Ignore {
				return false
			}
			if ni.MetaName.Name != "" {
				return false
			}
			ni.MetaName = ast.Id{Name: "_"}
			return true
		},
	}
}

func (p *IgnoreRules) Apply(ctx *Context) bool { return true }
