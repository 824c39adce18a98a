// Package modifier implements the Tree Modifier fixpoint driver: an ordered
// pipeline of rewriting/analysis passes that normalize a freshly-parsed
// ast.Grammar into the form internal/emit expects.
//
// Diagnostics follow the same per-kind error type convention
// internal/tunascript/error.go uses in the teacher repo (a SyntaxError type
// there, a family of named Error/Warning types here), batched rather than
// returned one at a time, since a single pass frequently finds many
// instances of the same problem (e.g. every undefined rule reference) and
// spec.md §7 requires "all instances of the same kind batched".
package modifier

import (
	"fmt"
	"strings"

	"github.com/polygen-project/polygen/internal/ast"
)

// Diagnostic is implemented by every semantic error/warning a pass can
// raise.
type Diagnostic interface {
	error
	Fatal() bool
}

// Diagnostics accumulates every warning and error raised over the course of
// a Modifier run.
type Diagnostics struct {
	Warnings []Diagnostic
	Errors   []Diagnostic
}

func (d *Diagnostics) addError(diag Diagnostic)   { d.Errors = append(d.Errors, diag) }
func (d *Diagnostics) addWarning(diag Diagnostic) { d.Warnings = append(d.Warnings, diag) }

func (d *Diagnostics) record(diag Diagnostic) {
	if diag.Fatal() {
		d.addError(diag)
	} else {
		d.addWarning(diag)
	}
}

// HasFatal reports whether any accumulated diagnostic is fatal.
func (d *Diagnostics) HasFatal() bool { return len(d.Errors) > 0 }

// Error renders every accumulated error, one per line. Satisfies the error
// interface so a *Diagnostics can be returned/wrapped directly.
func (d *Diagnostics) Error() string {
	var sb strings.Builder
	for i, e := range d.Errors {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}

func loc(info *ast.ParseInfo) string {
	if info == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", info.File, info.Line, info.Col)
}

// UndefinedReferenceError reports a rule Id referenced from an item but
// never defined. Fatal (spec.md §4.3 pass 1).
type UndefinedReferenceError struct {
	Name string
	Info *ast.ParseInfo
}

func (e *UndefinedReferenceError) Fatal() bool { return true }
func (e *UndefinedReferenceError) Error() string {
	return fmt.Sprintf("%s: undefined rule %q", loc(e.Info), e.Name)
}

// RedefinedRuleError reports two Rules sharing the same Id. Fatal.
type RedefinedRuleError struct {
	Name  string
	First *ast.ParseInfo
	Again *ast.ParseInfo
}

func (e *RedefinedRuleError) Fatal() bool { return true }
func (e *RedefinedRuleError) Error() string {
	return fmt.Sprintf("%s: rule %q redefined (first defined at %s)", loc(e.Again), e.Name, loc(e.First))
}

// UndefinedEntryError reports that no rule in the grammar carries @entry.
type UndefinedEntryError struct{}

func (e *UndefinedEntryError) Fatal() bool   { return true }
func (e *UndefinedEntryError) Error() string { return "no rule marked @entry" }

// RedefinedEntryError reports that more than one rule carries @entry.
type RedefinedEntryError struct {
	Names []string
}

func (e *RedefinedEntryError) Fatal() bool { return true }
func (e *RedefinedEntryError) Error() string {
	return fmt.Sprintf("multiple rules marked @entry: %s", strings.Join(e.Names, ", "))
}

// InvalidRangeError reports a Class Range with Last < First. Fatal.
type InvalidRangeError struct {
	First, Last rune
	Info        *ast.ParseInfo
}

func (e *InvalidRangeError) Fatal() bool { return true }
func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("%s: invalid range %q-%q (last < first)", loc(e.Info), e.First, e.Last)
}

// InvalidRepetitionError reports a Repetition with last < first. Fatal.
type InvalidRepetitionError struct {
	First, Last int
	Info        *ast.ParseInfo
}

func (e *InvalidRepetitionError) Fatal() bool { return true }
func (e *InvalidRepetitionError) Error() string {
	return fmt.Sprintf("%s: invalid repetition {%d,%d} (last < first)", loc(e.Info), e.First, e.Last)
}

// DuplicateMetaRuleError reports two named MetaRules sharing an Id. Fatal.
type DuplicateMetaRuleError struct {
	Name  string
	Info  *ast.ParseInfo
}

func (e *DuplicateMetaRuleError) Fatal() bool { return true }
func (e *DuplicateMetaRuleError) Error() string {
	return fmt.Sprintf("%s: metarule %q defined more than once", loc(e.Info), e.Name)
}

// UnresolvedMetaRefError reports an Alt's "$name" attachment with no
// matching MetaRule definition. Fatal.
type UnresolvedMetaRefError struct {
	Name string
	Info *ast.ParseInfo
}

func (e *UnresolvedMetaRefError) Fatal() bool { return true }
func (e *UnresolvedMetaRefError) Error() string {
	return fmt.Sprintf("%s: reference to undefined metarule %q", loc(e.Info), e.Name)
}

// UnusedMetaRuleWarning reports a named MetaRule that no Alt references.
type UnusedMetaRuleWarning struct {
	Name string
	Info *ast.ParseInfo
}

func (e *UnusedMetaRuleWarning) Fatal() bool { return false }
func (e *UnusedMetaRuleWarning) Error() string {
	return fmt.Sprintf("%s: metarule %q is never referenced", loc(e.Info), e.Name)
}

// LookaheadMetanameWarning reports a user-supplied metaname on an And/Not
// item, which GenerateMetanames downgrades to "_".
type LookaheadMetanameWarning struct {
	Name string
	Info *ast.ParseInfo
}

func (e *LookaheadMetanameWarning) Fatal() bool { return false }
func (e *LookaheadMetanameWarning) Error() string {
	return fmt.Sprintf("%s: metaname %q on a lookahead item is never bound; downgraded to \"_\"", loc(e.Info), e.Name)
}

// MetanameCollisionError reports two NamedItems in the same Alt resolving
// to the same metaname. Fatal.
type MetanameCollisionError struct {
	Name string
	Info *ast.ParseInfo
}

func (e *MetanameCollisionError) Fatal() bool { return true }
func (e *MetanameCollisionError) Error() string {
	return fmt.Sprintf("%s: metaname %q collides with an earlier item in the same alternative", loc(e.Info), e.Name)
}

