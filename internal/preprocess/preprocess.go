// Package preprocess implements the skeleton template preprocessor spec.md
// §6.4 describes: a target-language skeleton file containing "%% name %%"
// markers, each replaced by named content supplied by the emitter, with the
// marker's own line prefix preserved across every line of a multi-line
// substitution (so a marker embedded in a comment or indented inside a
// function produces a commented/indented expansion).
//
// Grounded on internal/gparser/include.go's line-oriented, regexp-driven
// text substitution (@include is resolved the same way, before the real
// parser ever sees the text) and on original_source/polygen/generator/preprocessor.py,
// which this package's Marker/Fill contract and reindentation behavior
// follow directly.
package preprocess

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dekarrin/rosed"
)

// markerRE matches a "%% name %%" marker, capturing everything on the line
// before it (the prefix to preserve) and the marker name.
var markerRE = regexp.MustCompile(`^(.*?)%%\s*([A-Za-z_][A-Za-z0-9_]*)\s*%%\s*$`)

// PreprocessorError reports an unknown marker encountered in a skeleton
// file; spec.md §7 marks this fatal for the current file.
type PreprocessorError struct {
	File   string
	Line   int
	Marker string
}

func (e *PreprocessorError) Error() string {
	return fmt.Sprintf("%s:%d: unknown skeleton marker %q", e.File, e.Line, e.Marker)
}

// Fill substitutes every "%% name %%" marker in skeleton against content,
// returning the expanded text. A marker line's leading-whitespace-and-prefix
// is reproduced ahead of every line of its replacement, so a marker that
// appears as "// %% header %%" yields a "// "-commented multi-line header.
//
// An empty replacement leaves the marker line empty (no bare comment
// prefix left behind); the line break itself stays. Markers not present in content are a fatal
// PreprocessorError.
func Fill(file, skeleton string, content map[string]string) (string, error) {
	lines := strings.Split(skeleton, "\n")
	var out strings.Builder

	for i, line := range lines {
		m := markerRE.FindStringSubmatch(line)
		if m == nil {
			out.WriteString(line)
		} else {
			prefix, name := m[1], m[2]
			body, ok := content[name]
			if !ok {
				return "", &PreprocessorError{File: file, Line: i + 1, Marker: name}
			}
			writePrefixed(&out, prefix, body)
		}
		if i != len(lines)-1 {
			out.WriteRune('\n')
		}
	}
	return out.String(), nil
}

// writePrefixed writes body to out, reproducing prefix ahead of each of
// body's lines. An empty body writes nothing at all (the marker's line is
// left empty rather than holding a bare prefix).
//
// Every line gets the same literal prefix, which is exactly rosed's
// IndentOpts contract: one indent level, with Options.IndentStr set to the
// literal string to prepend instead of rosed's default tab/space run.
func writePrefixed(out *strings.Builder, prefix, body string) {
	if body == "" {
		return
	}
	opts := rosed.Options{IndentStr: prefix, NoTrailingLineSeparators: true}
	out.WriteString(rosed.Edit(body).IndentOpts(1, opts).String())
}

// ReindentMetaRuleBody reindents a metarule's (possibly multi-line) semantic
// action body to callSitePrefix, matching
// original_source/polygen/generator/preprocessor.py's behavior of
// reindenting a metarule body to its call site rather than emitting it as a
// raw, unindented string blob. Internal blank lines are left blank rather
// than padded with trailing whitespace.
//
// Unlike writePrefixed, this can't just delegate to rosed's IndentOpts: the
// first line sits directly after "return " or an assignment at the call
// site and must stay unprefixed, and blank lines inside the body must stay
// empty rather than becoming a prefix followed by nothing. Both are
// per-line exceptions to a uniform indent that IndentOpts has no way to
// express, so the line-by-line walk stays hand-rolled here.
func ReindentMetaRuleBody(body, callSitePrefix string) string {
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	for i, l := range lines {
		trimmed := strings.TrimLeft(l, " \t")
		if trimmed == "" {
			lines[i] = ""
			continue
		}
		if i == 0 {
			lines[i] = trimmed
			continue
		}
		lines[i] = callSitePrefix + trimmed
	}
	return strings.Join(lines, "\n")
}

// WrapDiagnostic wraps a long diagnostic hint to width columns, for CLI
// output of the Tree Modifier's warnings and errors, whose messages can run
// long once a file path and rule or metaname are interpolated in.
func WrapDiagnostic(msg string, width int) string {
	return rosed.Edit(msg).Wrap(width).String()
}
