// Package main provides the CLI entrypoint for xmlbind.
//
// xmlbind checks xmlbind annotations without running the program:
//   - check: reports annotation and binding file mistakes
//   - describe: prints the static layout of one annotated struct
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"xmlbind/binding"
	"xmlbind/internal/analyze"
	"xmlbind/internal/diagnostic"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}

		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

// exitError ends the program with a code and no further message.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func (e *exitError) ExitCode() int { return e.code }

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	summaryStyle = lipgloss.NewStyle().Faint(true)
)

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return &exitError{code: 2}
	}

	switch args[0] {
	case "check":
		return runCheck(ctx, args[1:], stdout, stderr)
	case "describe":
		return runDescribe(ctx, args[1:], stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `xmlbind - static checks for xmlbind annotations

Usage:
  xmlbind check [flags] [PATTERN...]
  xmlbind describe [flags] PATTERN TYPE

Run "xmlbind <command> --help" for the flags of a command.
`)
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	bindingPath string
	tagKey      string
	verbose     bool
}

func (c *commonFlags) add(fs *pflag.FlagSet) {
	fs.StringVarP(&c.bindingPath, "binding", "b", "", "binding file (.yaml, .yml, .json or .jsonc)")
	fs.StringVar(&c.tagKey, "tag-key", "", "struct tag key to read (default: xmlbind, or the binding file setting)")
	fs.BoolVarP(&c.verbose, "verbose", "v", false, "log package loading and checks")
}

func (c *commonFlags) logger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(logrus.WarnLevel)

	if c.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}

// checker loads the binding file, if any, and builds the checker.
func (c *commonFlags) checker(log logrus.FieldLogger) (*analyze.Checker, error) {
	var b *binding.File

	if c.bindingPath != "" {
		var err error

		b, err = binding.LoadFile(c.bindingPath)
		if err != nil {
			return nil, err
		}

		log.WithField("path", c.bindingPath).Debug("loaded binding file")
	}

	tagKey := c.tagKey
	if tagKey == "" && b != nil {
		tagKey = b.Settings.TagKey
	}

	return analyze.NewChecker(tagKey, b, log), nil
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)

	return fs
}

func runCheck(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var flags commonFlags

	var quiet bool

	fs := newFlagSet("check", stderr)
	flags.add(fs)
	fs.BoolVarP(&quiet, "quiet", "q", false, "only report errors")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return err
	}

	patterns := fs.Args()
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	log := flags.logger(stderr)

	checker, err := flags.checker(log)
	if err != nil {
		return err
	}

	graph, err := analyze.NewAnalyzer(log).LoadPackages(ctx, patterns...)
	if err != nil {
		return err
	}

	res := checker.Check(graph)
	printDiagnostics(stdout, res, quiet)

	if res.HasErrors() {
		return &exitError{code: 1}
	}

	return nil
}

func printDiagnostics(w io.Writer, res *diagnostic.Diagnostics, quiet bool) {
	for _, d := range res.All() {
		if quiet && d.Severity != diagnostic.DiagnosticError {
			continue
		}

		fmt.Fprintf(w, "%s %s\n", severityLabel(d.Severity), d.String())
	}

	summary := fmt.Sprintf("%d error(s), %d warning(s)", len(res.Errors), len(res.Warnings))
	fmt.Fprintln(w, summaryStyle.Render(summary))
}

func severityLabel(s diagnostic.DiagnosticSeverity) string {
	label := s.String() + ":"

	switch s {
	case diagnostic.DiagnosticError:
		return errorStyle.Render(label)
	case diagnostic.DiagnosticWarning:
		return warningStyle.Render(label)
	default:
		return infoStyle.Render(label)
	}
}

func runDescribe(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var flags commonFlags

	var dump bool

	fs := newFlagSet("describe", stderr)
	flags.add(fs)
	fs.BoolVar(&dump, "dump", false, "dump the layout as a Go value")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return err
	}

	if fs.NArg() != 2 {
		return fmt.Errorf("describe needs PATTERN and TYPE, got %d argument(s)", fs.NArg())
	}

	pattern, typeName := fs.Arg(0), fs.Arg(1)
	log := flags.logger(stderr)

	checker, err := flags.checker(log)
	if err != nil {
		return err
	}

	graph, err := analyze.NewAnalyzer(log).LoadPackages(ctx, pattern)
	if err != nil {
		return err
	}

	info, err := findType(graph, typeName)
	if err != nil {
		return err
	}

	layout, err := checker.Layout(graph, info)
	if err != nil {
		return err
	}

	if dump {
		dumper := spew.ConfigState{Indent: " ", DisableMethods: true}
		dumper.Fdump(stdout, layout)

		return nil
	}

	return layout.Write(stdout)
}

// findType resolves a type key, a short "pkg.Name" or a bare type name
// that is unique among the loaded packages.
func findType(graph *analyze.TypeGraph, name string) (*analyze.TypeInfo, error) {
	if info := graph.Lookup(name); info != nil {
		return info, nil
	}

	if strings.Contains(name, ".") {
		return nil, fmt.Errorf("type %s not found", name)
	}

	var found *analyze.TypeInfo

	for id, info := range graph.Types {
		if id.Name != name {
			continue
		}

		if found != nil {
			return nil, fmt.Errorf("type name %s is ambiguous: %s and %s", name, found.ID, id)
		}

		found = info
	}

	if found == nil {
		return nil, fmt.Errorf("type %s not found", name)
	}

	return found, nil
}
