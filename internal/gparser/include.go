package gparser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// includeRE matches an "@include "path"" directive line. Unlike the other
// directives (@entry, @ignore), @include takes an argument and is resolved
// at the text level before the grammar is ever tokenized (spec.md §6.1:
// "substitutes the contents of the named file... in place, before
// parsing").
var includeRE = regexp.MustCompile(`@include\s+"([^"]+)"`)

// IncludeError reports a failed @include resolution: either the target
// file could not be found on the search path, or it would introduce a
// cycle.
type IncludeError struct {
	Path  string
	Cycle bool
	Cause error
}

func (e *IncludeError) Error() string {
	if e.Cycle {
		return fmt.Sprintf("include cycle detected at %q", e.Path)
	}
	return fmt.Sprintf("include not found: %q: %v", e.Path, e.Cause)
}

func (e *IncludeError) Unwrap() error { return e.Cause }

// ResolveIncludes reads the grammar file at path, recursively substituting
// every "@include "name"" directive with the contents of the named file
// resolved against searchDirs (checked in order; the directory containing
// the including file is always checked first), and returns the fully
// expanded grammar text.
func ResolveIncludes(path string, searchDirs []string) (string, error) {
	return resolveIncludes(path, searchDirs, nil)
}

func resolveIncludes(path string, searchDirs []string, stack []string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &IncludeError{Path: path, Cause: err}
	}
	for _, s := range stack {
		if s == abs {
			return "", &IncludeError{Path: path, Cycle: true}
		}
	}
	stack = append(stack, abs)

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", &IncludeError{Path: path, Cause: err}
	}

	dirs := append([]string{filepath.Dir(abs)}, searchDirs...)

	var out strings.Builder
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if m := includeRE.FindStringSubmatch(line); m != nil {
			target, err := resolveOnSearchPath(m[1], dirs)
			if err != nil {
				return "", err
			}
			expanded, err := resolveIncludes(target, searchDirs, stack)
			if err != nil {
				return "", err
			}
			out.WriteString(expanded)
			out.WriteRune('\n')
			continue
		}
		out.WriteString(line)
		if i != len(lines)-1 {
			out.WriteRune('\n')
		}
	}
	return out.String(), nil
}

func resolveOnSearchPath(name string, dirs []string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
		return "", &IncludeError{Path: name, Cause: os.ErrNotExist}
	}
	for _, d := range dirs {
		candidate := filepath.Join(d, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", &IncludeError{Path: name, Cause: os.ErrNotExist}
}
