package modifier

import (
	"github.com/polygen-project/polygen/internal/ast"
	"github.com/polygen-project/polygen/internal/leftrec"
)

// ComputeLR wraps internal/leftrec.Analyze as the modifier pipeline's final
// required pass (spec.md §4.3 pass 10 / §4.4). The analysis itself needs no
// fixpoint traversal of its own — it runs its own two-sweep nullability
// fixpoint internally — so this pass is a single Apply call.
type ComputeLR struct{}

func (p *ComputeLR) Name() string { return "computelr" }

func (p *ComputeLR) NewTraversal(ctx *Context) ast.Visitor { return ast.Visitor{} }

func (p *ComputeLR) Apply(ctx *Context) bool {
	leftrec.Analyze(ctx.Grammar)
	return true
}
