// Package emit defines the Code Emitter collaborator contract (spec.md
// §4.5/§6.3): given a fully modified and annotated Grammar, a Backend
// produces target-language parser source through the skeleton
// preprocessor (internal/preprocess). Concrete backends live in their own
// subpackages, mirroring how internal/ictiobus splits one package per
// pipeline stage and exposes them through a thin top-level API
// (internal/ictiobus/ictiobus.go's Lexer/Parser interfaces).
package emit

import (
	"fmt"

	"github.com/polygen-project/polygen/internal/ast"
	"github.com/polygen-project/polygen/internal/preprocess"
)

// Options carries the settings common to every backend: the output
// identity (package/parser name) and the header/footer hooks the skeleton
// template exposes (spec.md §6.4).
type Options struct {
	ParserName string
	Package    string
	Version    string
	Header     string
	Footer     string
}

// Backend is one target language's code generator. Skeleton returns the
// raw skeleton text (with "%% name %%" markers); Markers computes the
// content for every marker the skeleton references, given the annotated
// grammar.
type Backend interface {
	// Name identifies the backend; Generate uses it to label the skeleton
	// ("<name>.skeleton") in preprocessor diagnostics.
	Name() string
	Skeleton() string
	Markers(g *ast.Grammar, opts Options) (map[string]string, error)
}

// Generate runs a Backend's skeleton through the preprocessor, filling in
// the backend's own markers plus the "version"/"datetime"/"parser_name"
// markers every backend gets for free so individual backends don't have to
// reimplement that boilerplate (spec.md §6.4 names these as markers every
// skeleton may use).
func Generate(b Backend, g *ast.Grammar, opts Options, datetime string) (string, error) {
	if g.Entry == nil {
		return "", fmt.Errorf("emit: grammar has no entry rule")
	}

	markers, err := b.Markers(g, opts)
	if err != nil {
		return "", fmt.Errorf("emit(%s): %w", b.Name(), err)
	}
	if _, ok := markers["parser_name"]; !ok {
		markers["parser_name"] = opts.ParserName
	}
	if _, ok := markers["version"]; !ok {
		markers["version"] = opts.Version
	}
	if _, ok := markers["datetime"]; !ok {
		markers["datetime"] = datetime
	}
	if _, ok := markers["header"]; !ok {
		markers["header"] = opts.Header
	}
	if _, ok := markers["footer"]; !ok {
		markers["footer"] = opts.Footer
	}

	return preprocess.Fill(b.Name()+".skeleton", b.Skeleton(), markers)
}
