package modifier

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/polygen-project/polygen/internal/ast"
)

// AssignMetaRules resolves every Alt's "$name" reference against the
// grammar's named MetaRule definitions, attaching the real MetaRule
// directly to the Alt, and clears Grammar.MetaRules once every reference
// has been resolved (spec.md §4.3 pass 7).
//
// internal/gparser's alt() already parks an unresolved reference as
// Alt.MetaRule = &ast.MetaRule{Id: refId} (empty Body) when it sees a bare
// "$name" MetaAttach, so "is this Alt's MetaRule still just a reference"
// is exactly "Body == "" && Id.Name != """.
type AssignMetaRules struct{}

func (p *AssignMetaRules) Name() string { return "assignmetarules" }

func (p *AssignMetaRules) NewTraversal(ctx *Context) ast.Visitor { return ast.Visitor{} }

func (p *AssignMetaRules) Apply(ctx *Context) bool {
	byName := map[string]*ast.MetaRule{}
	for _, mr := range ctx.Grammar.MetaRules {
		if mr.Id.Name == "" {
			continue
		}
		if _, dup := byName[mr.Id.Name]; dup {
			ctx.Diags.addError(&DuplicateMetaRuleError{Name: mr.Id.Name, Info: mr.Info})
			continue
		}
		byName[mr.Id.Name] = mr
	}

	used := map[string]bool{}
	for _, r := range ctx.Grammar.Rules {
		if r.Expr == nil {
			continue
		}
		for _, a := range r.Expr.Alts {
			if a.MetaRule == nil || a.MetaRule.Body != "" || a.MetaRule.Id.Name == "" {
				continue
			}
			ref := a.MetaRule.Id.Name
			mr, ok := byName[ref]
			if !ok {
				ctx.Diags.addError(&UnresolvedMetaRefError{Name: ref, Info: a.MetaRule.Id.Info})
				continue
			}
			a.MetaRule = mr
			used[ref] = true
		}
	}

	for _, mr := range ctx.Grammar.MetaRules {
		if mr.Id.Name != "" && !used[mr.Id.Name] {
			ctx.Diags.addWarning(&UnusedMetaRuleWarning{Name: mr.Id.Name, Info: mr.Info})
		}
	}

	ctx.Grammar.MetaRules = nil
	return true
}

// reservedWords are the target language's reserved identifiers;
// GenerateMetanames prefixes a colliding metaname with "_" rather than
// emitting an invalid variable name. internal/emit/gobackend is the only
// concrete backend this repo ships, so the list is Go's keyword set.
var reservedWords = map[string]bool{
	"break": true, "default": true, "func": true, "interface": true, "select": true,
	"case": true, "defer": true, "go": true, "map": true, "struct": true,
	"chan": true, "else": true, "goto": true, "package": true, "switch": true,
	"const": true, "fallthrough": true, "if": true, "range": true, "type": true,
	"continue": true, "for": true, "import": true, "return": true, "var": true,
}

var caseFold = cases.Fold()

func isReserved(name string) bool {
	return reservedWords[caseFold.String(strings.ToLower(name))]
}

// GenerateMetanames assigns a metaname to every NamedItem that doesn't
// already have a user-supplied one, independently per Alt (spec.md §4.3
// pass 8).
type GenerateMetanames struct{}

func (p *GenerateMetanames) Name() string { return "generatemetanames" }

func (p *GenerateMetanames) NewTraversal(ctx *Context) ast.Visitor {
	return ast.Visitor{
		VisitAlt: func(path ast.Path, a *ast.Alt) bool {
			changed := false
			seen := map[string]int{}
			posIndex := 0

			assign := func(ni *ast.NamedItem, name string) {
				if name != "_" && seen[name] > 0 {
					ctx.Diags.addError(&MetanameCollisionError{Name: name, Info: ni.Info})
				}
				seen[name]++
				if ni.MetaName.Name != name {
					ni.MetaName = ast.Id{Name: name}
					changed = true
				}
			}

			for _, ni := range a.Items {
				if ni.Item == nil {
					continue
				}
				userGiven := ni.MetaName.Name != ""

				if ni.Item.IsLookahead() {
					if userGiven && ni.MetaName.Name != "_" {
						ctx.Diags.addWarning(&LookaheadMetanameWarning{Name: ni.MetaName.Name, Info: ni.Info})
					}
					assign(ni, "_")
					continue
				}

				if userGiven {
					if ni.MetaName.Name != "_" && seen[ni.MetaName.Name] > 0 {
						ctx.Diags.addError(&MetanameCollisionError{Name: ni.MetaName.Name, Info: ni.Info})
					}
					seen[ni.MetaName.Name]++
					continue
				}

				switch {
				case ni.Item.Kind == ast.KindId && strings.Contains(ni.Item.IdRef.Name, "__GEN"):
					posIndex++
					assign(ni, fmt.Sprintf("_%d", posIndex))
				case ni.Item.Kind == ast.KindId:
					name := strings.ToLower(ni.Item.IdRef.Name)
					if isReserved(name) {
						name = "_" + name
					}
					if n := seen[name]; n > 0 {
						name = fmt.Sprintf("%s%d", name, n+1)
					}
					assign(ni, name)
				default:
					// Char/String/AnyChar, and every quantified/repeated
					// item (ZeroOrOne/ZeroOrMore/OneOrMore/Repetition):
					// spec.md §4.3 pass 8 only spells out naming rules for
					// leaf Id/Char/String/AnyChar kinds, but the Code
					// Emitter still needs some name to address a quantified
					// item's captured slice/option by, so it falls back to
					// the same shared positional counter. (ReplaceNestedExprs
					// has already run, so Kind is never KindGroup here.)
					posIndex++
					assign(ni, fmt.Sprintf("_%d", posIndex))
				}
			}
			return changed
		},
	}
}

func (p *GenerateMetanames) Apply(ctx *Context) bool { return true }
