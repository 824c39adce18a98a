/*
Polygen reads a PEG grammar file and generates a packrat parser from it.

Usage:

	polygen generate [flags] GRAMMAR_FILE
	polygen dump [flags] GRAMMAR_FILE

The generate subcommand runs GRAMMAR_FILE through the Tree Modifier
pipeline and emits a target-language parser via the selected backend. The
dump subcommand instead prints the (optionally modified) grammar's
structure, for inspecting what a modifier pass did.

The flags are:

	-v, --verbose
		Trace every modifier pass iteration to stderr.

	-o, --output FILE
		Write generated/dumped output to FILE instead of stdout.

	-b, --backend NAME
		Select the code emitter backend for generate. Defaults to "go".

	-I, --include-dir DIR
		Add DIR to the @include search path. May be given more than once.

	-c, --config FILE
		Project config file to load defaults from. Defaults to
		".polygen.toml" in the current directory if present.

	-m, --mod OVERRIDE
		Override a modifier pass option, "mod.<pass>=<value>" or
		"mod.<pass>.<opt>=<value>". May be given more than once.

	--modified
		For dump, run the full modifier pipeline before dumping (default:
		dump the grammar exactly as parsed).

	--format FORMAT
		For dump, the output encoding: "json" (default) or "rezi".
*/
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/spf13/pflag"

	"github.com/polygen-project/polygen/internal/ast"
	"github.com/polygen-project/polygen/internal/config"
	"github.com/polygen-project/polygen/internal/diag"
	"github.com/polygen-project/polygen/internal/emit"
	"github.com/polygen-project/polygen/internal/emit/gobackend"
	"github.com/polygen-project/polygen/internal/gparser"
	"github.com/polygen-project/polygen/internal/modifier"
	"github.com/polygen-project/polygen/internal/preprocess"
	"github.com/polygen-project/polygen/internal/version"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates bad flags/arguments or an unknown subcommand.
	ExitUsageError

	// ExitParseError indicates the grammar file itself failed to parse.
	ExitParseError

	// ExitModifierError indicates a fatal diagnostic from the Tree
	// Modifier pipeline.
	ExitModifierError

	// ExitEmitError indicates the code emitter itself failed (e.g. no entry
	// rule). An unknown --backend is reported as ExitUsageError.
	ExitEmitError

	// ExitIOError indicates a failure reading the grammar or writing
	// output.
	ExitIOError
)

var returnCode = ExitSuccess

var (
	flagVersion = pflag.BoolP("version", "V", false, "Gives the version info")
	flagVerbose = pflag.BoolP("verbose", "v", false, "Trace modifier pass iterations to stderr")
	flagOutput  = pflag.StringP("output", "o", "", "Write output to this file instead of stdout")
	flagBackend = pflag.StringP("backend", "b", "go", "Code emitter backend to use for generate")
	flagConfig  = pflag.StringP("config", "c", ".polygen.toml", "Project config file to load defaults from")
	flagMods    = pflag.StringArrayP("mod", "m", nil, `Modifier override, "mod.<pass>=<value>" or "mod.<pass>.<opt>=<value>"`)
	flagInclude = pflag.StringArrayP("include-dir", "I", nil, "Add a directory to the @include search path")
	flagModded  = pflag.Bool("modified", false, "For dump, run the full modifier pipeline before dumping")
	flagFormat  = pflag.String("format", "json", `For dump, output encoding: "json" or "rezi"`)
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	args := pflag.Args()
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "ERROR: expected a subcommand and a grammar file\n")
		returnCode = ExitUsageError
		return
	}

	cmd, grammarFile := args[0], args[1]
	log := diag.New(*flagVerbose)

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitIOError
		return
	}
	if *flagBackend == "go" && cfg.Backend != "" {
		*flagBackend = cfg.Backend
	}
	if *flagOutput == "" && cfg.Output != "" {
		*flagOutput = cfg.Output
	}

	base, err := cfg.ModifierOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitUsageError
		return
	}
	modOpts, err := config.MergeOverrides(base, *flagMods)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitUsageError
		return
	}

	src, err := gparser.ResolveIncludes(grammarFile, *flagInclude)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitIOError
		return
	}

	g, err := gparser.New(src, grammarFile).Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitParseError
		return
	}

	switch cmd {
	case "generate":
		runGenerate(g, modOpts, log)
	case "dump":
		runDump(g, modOpts, log)
	default:
		fmt.Fprintf(os.Stderr, "ERROR: unknown subcommand %q\n", cmd)
		returnCode = ExitUsageError
	}
}

func runGenerate(g *ast.Grammar, modOpts map[string]modifier.PassOptions, log *diag.Logger) {
	diags, err := modifier.Default().RunVerbose(g, modOpts, log)
	if err != nil {
		reportDiagnostics(diags)
		returnCode = ExitModifierError
		return
	}
	reportDiagnostics(diags)

	var backend emit.Backend
	switch *flagBackend {
	case "go":
		backend = gobackend.New()
	default:
		fmt.Fprintf(os.Stderr, "ERROR: unknown backend %q\n", *flagBackend)
		returnCode = ExitUsageError
		return
	}

	name := *flagOutput
	if name == "" {
		name = "grammar"
	}
	opts := emit.Options{ParserName: name, Package: name, Version: version.Current}

	out, err := emit.Generate(backend, g, opts, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitEmitError
		return
	}

	if writeErr := writeOutput([]byte(out)); writeErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", writeErr)
		returnCode = ExitIOError
	}
}

func runDump(g *ast.Grammar, modOpts map[string]modifier.PassOptions, log *diag.Logger) {
	if *flagModded {
		diags, err := modifier.Default().RunVerbose(g, modOpts, log)
		reportDiagnostics(diags)
		if err != nil {
			returnCode = ExitModifierError
			return
		}
	}

	snap := ast.ToSnapshot(g)

	var out []byte
	var err error
	switch *flagFormat {
	case "json":
		out, err = json.MarshalIndent(snap, "", "  ")
	case "rezi":
		out = rezi.EncBinary(snap)
	default:
		fmt.Fprintf(os.Stderr, "ERROR: unknown dump format %q\n", *flagFormat)
		returnCode = ExitUsageError
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitEmitError
		return
	}

	if writeErr := writeOutput(out); writeErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", writeErr)
		returnCode = ExitIOError
	}
}

func writeOutput(data []byte) error {
	if *flagOutput == "" {
		_, err := os.Stdout.Write(data)
		if err == nil {
			fmt.Println()
		}
		return err
	}
	return os.WriteFile(*flagOutput, data, 0o644)
}

// diagnosticWrapWidth is the column width diagnostic messages are wrapped
// to before printing; a batched run can produce many instances of the same
// warning with a long interpolated rule/file name, and an unwrapped line
// that runs past a normal terminal width is harder to scan than a wrapped
// one.
const diagnosticWrapWidth = 100

func reportDiagnostics(diags *modifier.Diagnostics) {
	if diags == nil {
		return
	}
	for _, w := range diags.Warnings {
		fmt.Fprintf(os.Stderr, "WARN: %s\n", preprocess.WrapDiagnostic(w.Error(), diagnosticWrapWidth))
	}
	for _, e := range diags.Errors {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", preprocess.WrapDiagnostic(e.Error(), diagnosticWrapWidth))
	}
}
