// Package gobackend is the reference emit.Backend that targets Go itself:
// it proves out the Code Emitter contract (spec.md §4.5) end to end by
// emitting a parser that imports internal/reader and internal/runtime
// (which in turn uses internal/runtime/memo), the same support library this module's own
// hand-written gparser could have been built on top of. Other per-language
// backends are out of scope (spec.md §1's Non-goals) but would implement
// the same emit.Backend interface.
package gobackend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/polygen-project/polygen/internal/ast"
	"github.com/polygen-project/polygen/internal/emit"
	"github.com/polygen-project/polygen/internal/preprocess"
)

// Backend emits a single-file Go parser package.
type Backend struct{}

func New() *Backend { return &Backend{} }

func (b *Backend) Name() string { return "go" }

func (b *Backend) Skeleton() string { return skeleton }

// Markers builds the "body", "entry", and "grow_rules" marker content the
// skeleton (skeleton.go) references, by walking every rule of g and
// emitting one Go method per rule (spec.md §4.5: head rules get a
// seed/grower dispatcher, everything else a sequential ordered-choice
// matcher).
func (b *Backend) Markers(g *ast.Grammar, opts emit.Options) (map[string]string, error) {
	gen := &generator{grammar: g, pkg: opts.Package}

	var body strings.Builder
	for _, r := range g.Rules {
		fn, err := gen.rule(r)
		if err != nil {
			return nil, err
		}
		body.WriteString(fn)
		body.WriteString("\n")
	}

	var growRules strings.Builder
	growRules.WriteString("map[string]bool{")
	for _, r := range g.Rules {
		if r.Head {
			fmt.Fprintf(&growRules, "%q: true, ", r.Id.Name)
		}
	}
	growRules.WriteString("}")

	entry := fmt.Sprintf("p.rule_%s(s)", safeIdent(g.Entry.Id.Name))

	return map[string]string{
		"body":       body.String(),
		"entry":      entry,
		"grow_rules": growRules.String(),
	}, nil
}

// safeIdent rewrites the "__GEN" marker of a synthesized rule name to
// "_gen". It adds no prefix itself; every caller prepends "rule_", which is
// what keeps the result from colliding with a Go keyword.
func safeIdent(name string) string {
	return strings.ReplaceAll(name, "__GEN", "_gen")
}

// generator holds the per-Grammar state the rule-body codegen threads
// through: the grammar, the target package name, and the counter freshTemp
// uses to mint temporary variable names.
type generator struct {
	grammar *ast.Grammar
	pkg     string
	tmp     int
}

func (gen *generator) freshTemp() string {
	gen.tmp++
	return fmt.Sprintf("t%d", gen.tmp)
}

// rule emits one Go method for r: a head rule becomes a seed/grower
// dispatcher built on runtime.SeedGrow; any other rule becomes a
// runtime.Memoized sequential ordered-choice matcher.
func (gen *generator) rule(r *ast.Rule) (string, error) {
	if r.Expr == nil {
		return "", fmt.Errorf("gobackend: rule %q has no expression", r.Id.Name)
	}
	name := safeIdent(r.Id.Name)

	if r.Head {
		return gen.headRule(r, name)
	}
	return gen.plainRule(r, name)
}

func (gen *generator) plainRule(r *ast.Rule, name string) (string, error) {
	var alts strings.Builder
	for _, a := range r.Expr.Alts {
		fn, err := gen.altClosure(a)
		if err != nil {
			return "", fmt.Errorf("rule %q: %w", r.Id.Name, err)
		}
		fmt.Fprintf(&alts, "\t\tif v, ok := (%s)(s); ok {\n\t\t\treturn v, true\n\t\t}\n", fn)
	}

	return fmt.Sprintf(`func (p *Parser) rule_%s(s *runtime.State) (any, bool) {
	return runtime.Memoized(s, %q, func(s *runtime.State) (any, bool) {
%s		return nil, false
	})
}
`, name, r.Id.Name, alts.String()), nil
}

func (gen *generator) headRule(r *ast.Rule, name string) (string, error) {
	var seeds, growers strings.Builder
	for _, a := range r.Expr.Alts {
		fn, err := gen.altClosure(a)
		if err != nil {
			return "", fmt.Errorf("rule %q: %w", r.Id.Name, err)
		}
		if a.Grower {
			fmt.Fprintf(&growers, "\t\t%s,\n", fn)
		} else {
			fmt.Fprintf(&seeds, "\t\t%s,\n", fn)
		}
	}

	// Every other rule in r's SCC chain(s) needs its memo entry invalidated
	// between grow iterations, since those rules generate as plain
	// runtime.Memoized matchers that otherwise never see their stale,
	// bootstrap-phase cached result cleared (indirect left recursion,
	// spec.md §7 scenario 4).
	seen := map[string]bool{}
	var memberNames []string
	if r.LeftRec != nil {
		for _, scc := range r.LeftRec.Chains {
			for _, m := range scc.Members {
				if m.Id.Name != r.Id.Name && !seen[m.Id.Name] {
					seen[m.Id.Name] = true
					memberNames = append(memberNames, m.Id.Name)
				}
			}
		}
	}
	sort.Strings(memberNames)
	callArgs := "seeds, growers"
	for _, mn := range memberNames {
		callArgs += fmt.Sprintf(", %q", mn)
	}

	return fmt.Sprintf(`func (p *Parser) rule_%s(s *runtime.State) (any, bool) {
	seeds := []runtime.Rule{
%s	}
	growers := []runtime.Rule{
%s	}
	return runtime.SeedGrow(s, %q, %s)
}
`, name, seeds.String(), growers.String(), r.Id.Name, callArgs), nil
}

// altClosure emits a `func(s *runtime.State) (any, bool) { ... }` literal
// matching one Alt in full: every NamedItem in order, short-circuiting to
// (nil, false) on the first failure, restoring to the alt's own start
// position (PEG alternatives never leave partial consumption behind on
// failure). On success it either runs the Alt's metarule body (an opaque
// string, reindented to its call site) or returns a map of the Alt's
// non-ignored metanames, per spec.md §4.5.
func (gen *generator) altClosure(a *ast.Alt) (string, error) {
	var b strings.Builder
	b.WriteString("func(s *runtime.State) (any, bool) {\n")
	b.WriteString("\t\t\tstart := s.R.Mark()\n")

	for i, ni := range a.Items {
		expr, err := gen.itemExpr(ni.Item)
		if err != nil {
			return "", err
		}
		varName := fmt.Sprintf("v%d", i)
		fmt.Fprintf(&b, "\t\t\t%s, ok := (%s)(s)\n", varName, expr)
		b.WriteString("\t\t\tif !ok {\n\t\t\t\ts.R.Restore(start)\n\t\t\t\treturn nil, false\n\t\t\t}\n")
		// Every item gets a blank-identifier use regardless of whether its
		// value is bound to a metaname below: an ignored or lookahead item
		// (e.g. the "!." in "EOF <- !.") still declares vN above, and Go
		// rejects an unused local unconditionally.
		fmt.Fprintf(&b, "\t\t\t_ = %s\n", varName)
	}

	if a.MetaRule != nil {
		var bindings strings.Builder
		for i, ni := range a.Items {
			if !ni.Ignored() && ni.MetaName.Name != "" {
				fmt.Fprintf(&bindings, "\t\t\t%s := v%d\n\t\t\t_ = %s\n", ni.MetaName.Name, i, ni.MetaName.Name)
			}
		}
		body := preprocess.ReindentMetaRuleBody(a.MetaRule.Body, "\t\t\t")
		fmt.Fprintf(&b, "%s\t\t\t%s\n", bindings.String(), strings.TrimSpace(body))
	} else {
		b.WriteString("\t\t\treturn map[string]any{\n")
		for i, ni := range a.Items {
			if !ni.Ignored() && ni.MetaName.Name != "" {
				fmt.Fprintf(&b, "\t\t\t\t%q: v%d,\n", ni.MetaName.Name, i)
			}
		}
		b.WriteString("\t\t\t}, true\n")
	}

	b.WriteString("\t\t}")
	return b.String(), nil
}

// itemExpr emits a Go expression of type func(*runtime.State) (any, bool)
// matching a single Item, recursing through quantifiers and lookaheads to
// their underlying primitive.
func (gen *generator) itemExpr(it *ast.Item) (string, error) {
	switch it.Kind {
	case ast.KindId:
		return fmt.Sprintf("p.rule_%s", safeIdent(it.IdRef.Name)), nil

	case ast.KindChar:
		return fmt.Sprintf("func(s *runtime.State) (any, bool) { c := rune(%d); return runtime.ExpectChar(s, &c) }", it.CharVal), nil

	case ast.KindString:
		return fmt.Sprintf("func(s *runtime.State) (any, bool) { return runtime.ExpectString(s, %q) }", it.StringVal), nil

	case ast.KindAnyChar:
		return "func(s *runtime.State) (any, bool) { return runtime.ExpectChar(s, nil) }", nil

	case ast.KindClass:
		var ivs strings.Builder
		for _, r := range it.ClassVal {
			fmt.Fprintf(&ivs, "{%d, %d}, ", r.Lo(), r.Hi())
		}
		return fmt.Sprintf("func(s *runtime.State) (any, bool) { return runtime.Ranges(s, %s) }", ivs.String()), nil

	case ast.KindZeroOrOne:
		sub, err := gen.itemExpr(it.Sub)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("func(s *runtime.State) (any, bool) { return runtime.Maybe(s, %s) }", sub), nil

	case ast.KindZeroOrMore:
		sub, err := gen.itemExpr(it.Sub)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("func(s *runtime.State) (any, bool) { return runtime.Loop(s, false, %s) }", sub), nil

	case ast.KindOneOrMore:
		sub, err := gen.itemExpr(it.Sub)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("func(s *runtime.State) (any, bool) { return runtime.Loop(s, true, %s) }", sub), nil

	case ast.KindRepetition:
		sub, err := gen.itemExpr(it.Sub)
		if err != nil {
			return "", err
		}
		last := "nil"
		if it.RepLast != nil {
			last = fmt.Sprintf("intPtr(%d)", *it.RepLast)
		}
		return fmt.Sprintf("func(s *runtime.State) (any, bool) { return runtime.Rep(s, %d, %s, %s) }", it.RepFirst, last, sub), nil

	case ast.KindAnd:
		sub, err := gen.itemExpr(it.Sub)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("func(s *runtime.State) (any, bool) { return runtime.Lookahead(s, true, %s) }", sub), nil

	case ast.KindNot:
		sub, err := gen.itemExpr(it.Sub)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("func(s *runtime.State) (any, bool) { return runtime.Lookahead(s, false, %s) }", sub), nil

	default:
		return "", fmt.Errorf("gobackend: item kind %s should not reach code generation", it.Kind)
	}
}
