package modifier

import (
	"github.com/polygen-project/polygen/internal/ast"
	"github.com/polygen-project/polygen/internal/diag"
)

// Context is threaded through every pass invocation for one Modifier run:
// the Grammar being rewritten, the Diagnostics accumulator, and the
// per-pass option overrides.
type Context struct {
	Grammar *ast.Grammar
	Diags   *Diagnostics

	// Options carries the mod.<pass>[.<opt>] overrides the CLI or
	// project config supplies (internal/config), keyed by pass Name().
	Options map[string]PassOptions
}

// PassOptions is the set of flag-style overrides a single pass reads from
// its Context. Unset keys fall back to the pass's own default.
type PassOptions map[string]string

// Bool reads a boolean-valued option, defaulting to def if absent or
// unparseable.
func (o PassOptions) Bool(key string, def bool) bool {
	v, ok := o[key]
	if !ok {
		return def
	}
	return v == "true" || v == "1" || v == "yes"
}

// Pass is one stage of the Tree Modifier pipeline (spec.md §4.3). A pass
// may run its traversal more than once: the driver calls NewTraversal for
// every sweep to get a fresh ast.Visitor bound to that sweep's mutable
// state, then calls Apply once the traversal completes. A pass is done
// when a traversal reports no changes and Apply returns true.
type Pass interface {
	// Name identifies the pass for diagnostics and config overrides
	// (e.g. "mod.createanychar.strict").
	Name() string

	// NewTraversal returns a Visitor for the next post-order sweep over
	// ctx.Grammar. Passes that only need a single sweep (most of the
	// "check" passes) can ignore the sweep count and always return the
	// same logic; Apply should report done=true after that first sweep
	// regardless of whether ast.Walk reported a change.
	NewTraversal(ctx *Context) ast.Visitor

	// Apply runs after a traversal completes. It may emit diagnostics,
	// mutate ctx.Grammar further (e.g. append generated rules, clear the
	// metarule list), and decides whether the pass is done.
	Apply(ctx *Context) (done bool)
}

// Modifier holds the ordered pipeline of passes spec.md §4.3 requires, run
// in sequence by Run.
type Modifier struct {
	Passes []Pass
}

// Default returns a Modifier configured with every required pass in the
// order spec.md §4.3 names, plus the optional passes (disabled by
// default; enable via opts["<passname>"]["enabled"] = "true").
func Default() *Modifier {
	return &Modifier{
		Passes: []Pass{
			&CheckUndefinedRules{},
			&CheckRedefinedRules{},
			&ReplaceNestedExprs{},
			&FindEntryRule{},
			&CreateAnyChar{},
			&IgnoreRules{},
			&AssignMetaRules{},
			&GenerateMetanames{},
			&ValidateRangesAndReps{},
			&ComputeLR{},
			&EliminateAnd{},
			&ExpandClass{},
			&ReplaceRep{},
		},
	}
}

// Run drives every pass in order to its fixpoint, accumulating diagnostics
// into a fresh Diagnostics. It stops and returns early the moment a pass
// leaves any fatal error behind — spec.md §4.3: "for errors the pass itself
// considers fatal, the driver aborts and surfaces the accumulated errors."
func (m *Modifier) Run(g *ast.Grammar, opts map[string]PassOptions) (*Diagnostics, error) {
	return m.RunVerbose(g, opts, nil)
}

// RunVerbose is Run plus a diag.Logger that, when non-nil and enabled,
// traces every pass iteration (the CLI's -v/--verbose flag wires this up).
func (m *Modifier) RunVerbose(g *ast.Grammar, opts map[string]PassOptions, log *diag.Logger) (*Diagnostics, error) {
	if opts == nil {
		opts = map[string]PassOptions{}
	}
	ctx := &Context{Grammar: g, Diags: &Diagnostics{}, Options: opts}

	for _, pass := range m.Passes {
		for iter := 1; ; iter++ {
			log.Pass(pass.Name(), iter)
			v := pass.NewTraversal(ctx)
			changed := ast.Walk(ctx.Grammar, v)
			done := pass.Apply(ctx)

			if ctx.Diags.HasFatal() {
				return ctx.Diags, ctx.Diags
			}
			if !changed && done {
				break
			}
		}
	}

	return ctx.Diags, nil
}
