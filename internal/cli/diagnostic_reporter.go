package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"github.com/toyz/smog/internal/annotations"
	smogerrors "github.com/toyz/smog/internal/errors"
	"github.com/toyz/smog/internal/models"
)

// DiagnosticReporter provides user-friendly error reporting
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     os.Stderr,
	}
}

// SetOutput redirects the reporter
func (r *DiagnosticReporter) SetOutput(w io.Writer) {
	r.out = w
}

// ReportWarning prints a single warning line
func (r *DiagnosticReporter) ReportWarning(message string) {
	warn := color.New(color.FgYellow, color.Bold)
	warn.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError reports every error found in err. Aggregated errors are
// expanded so each failing contract or annotation gets its own entry.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}
	problems := leaves(err)

	fmt.Fprintf(r.out, "\nERROR: Code Generation Failed\n")
	fmt.Fprintf(r.out, "=============================\n\n")
	if len(problems) > 1 {
		fmt.Fprintf(r.out, "%d problems found\n\n", len(problems))
	}

	for _, problem := range problems {
		r.reportOne(problem)
	}

	if hints := errors.FlattenHints(err); hints != "" {
		r.printSuggestions(strings.Split(hints, "\n--\n"))
	}

	if r.verbose {
		fmt.Fprintf(r.out, "Verbose Debug Information:\n%+v\n\n", err)
	} else {
		fmt.Fprintf(r.out, "Run with --verbose for more detailed output\n")
	}
}

func (r *DiagnosticReporter) reportOne(err error) {
	var (
		kind        = "Error"
		location    string
		message     = err.Error()
		suggestions []string
	)

	switch e := err.(type) {
	case smogerrors.SmogError:
		kind = e.ErrorCode().String()
		if loc := e.Location(); !loc.IsEmpty() {
			location = loc.String()
		}
		message = errorMessage(e)
		suggestions = e.Suggestions()
	case annotations.AnnotationError:
		kind = e.Code().String()
		if loc := e.Location(); loc.File != "" {
			location = smogerrors.SourceLocation(loc).String()
		}
		if s := e.Suggestion(); s != "" {
			suggestions = []string{s}
		}
	case *models.GeneratorError:
		kind = strings.ToUpper(e.Type.String()[:1]) + e.Type.String()[1:] + " Error"
		if e.File != "" {
			location = e.File
			if e.Line > 0 {
				location = fmt.Sprintf("%s:%d", e.File, e.Line)
			}
		}
		message = e.Message
	}

	r.printErrorHeader(kind)
	if location != "" {
		fmt.Fprintf(r.out, "Location: %s\n", location)
	}
	fmt.Fprintf(r.out, "Message: %s\n\n", message)
	if len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}
}

// errorMessage drops the location prefix BaseError.Error adds, since it is
// printed separately
func errorMessage(e smogerrors.SmogError) string {
	if be, ok := e.(*smogerrors.BaseError); ok {
		msg := be.Message
		if be.Cause != nil {
			msg = fmt.Sprintf("%s: %v", msg, be.Cause)
		}
		return msg
	}
	return e.Error()
}

// printErrorHeader prints a formatted error header
func (r *DiagnosticReporter) printErrorHeader(kind string) {
	header := color.New(color.FgRed, color.Bold)
	header.Fprintf(r.out, "Type: %s\n", kind)
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("-", len(kind)+6))
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
	fmt.Fprintf(r.out, "\n")
}

// leaves expands aggregated errors into the errors they hold
func leaves(err error) []error {
	switch e := err.(type) {
	case *smogerrors.MultipleErrors:
		var out []error
		for _, inner := range e.Errors {
			out = append(out, leaves(inner)...)
		}
		return out
	case *annotations.MultipleAnnotationErrors:
		out := make([]error, len(e.Errors))
		for i, inner := range e.Errors {
			out[i] = inner
		}
		return out
	case smogerrors.SmogError, annotations.AnnotationError, *models.GeneratorError:
		return []error{err}
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, inner := range joined.Unwrap() {
			out = append(out, leaves(inner)...)
		}
		return out
	}
	if inner := stderrors.Unwrap(err); inner != nil {
		if found := leaves(inner); len(found) > 1 || isStructured(found[0]) {
			return found
		}
	}
	return []error{err}
}

func isStructured(err error) bool {
	switch err.(type) {
	case smogerrors.SmogError, annotations.AnnotationError, *models.GeneratorError:
		return true
	}
	return false
}

// GenerationSummary contains information about the generation process
type GenerationSummary struct {
	RunID             string
	Module            string
	PackagesLoaded    int
	PackagesGenerated int
	TypesGenerated    int
	GeneratedFiles    []string
	RemovedFiles      []string
	UnchangedFiles    []string
}
