// Package errorformat renders data access errors for people: as a colored
// block, the same block without ANSI codes, or a single line.
package errorformat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"

	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
)

// Format selects how errors are rendered
type Format string

const (
	Pretty    Format = "pretty"
	Colorless Format = "colorless"
	Minimal   Format = "minimal"
)

// Parse returns the Format named s. The empty string selects Colorless.
func Parse(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Colorless, nil
	case Pretty, Colorless, Minimal:
		return f, nil
	default:
		return "", fmt.Errorf("unknown error format %q, expected pretty, colorless or minimal", s)
	}
}

// Formatter renders errors in one Format. It is safe for concurrent use.
type Formatter struct {
	format Format

	header func(a ...any) string
	label  func(a ...any) string
	value  func(a ...any) string
	hint   func(a ...any) string
}

// New returns a Formatter for format. Pretty output always carries color
// codes, whether or not stdout is a terminal.
func New(format Format) *Formatter {
	f := &Formatter{format: format}
	if format != Pretty {
		plain := fmt.Sprint
		f.header, f.label, f.value, f.hint = plain, plain, plain, plain
		return f
	}

	sprint := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		c.EnableColor()
		return c.SprintFunc()
	}
	f.header = sprint(color.FgRed, color.Bold)
	f.label = sprint(color.FgCyan)
	f.value = sprint(color.FgYellow)
	f.hint = sprint(color.Faint)
	return f
}

// Format returns the configured Format
func (f *Formatter) Format() Format {
	return f.format
}

// Render renders err. A nil error renders as "".
func (f *Formatter) Render(err error) string {
	if err == nil {
		return ""
	}

	kind := errs.KindOf(err)
	code := errs.ErrorCode(err)
	if f.format == Minimal {
		return fmt.Sprintf("%s [%d]: %s", kind, code, singleLine(err.Error()))
	}

	d := describe(err)
	var b strings.Builder
	if d.model != "" || d.operation != "" {
		b.WriteString(f.hint(fmt.Sprintf("Invalid `%s` invocation:", invocation(d.model, d.operation))))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "%s %s\n", f.header(string(kind)), f.hint(fmt.Sprintf("[%d]", code)))
	b.WriteString(err.Error())
	b.WriteString("\n")

	for _, row := range d.rows {
		fmt.Fprintf(&b, "  %s %s\n", f.label(fmt.Sprintf("%-11s", row[0]+":")), f.value(row[1]))
	}
	return strings.TrimRight(b.String(), "\n")
}

type description struct {
	model     string
	operation string
	rows      [][2]string
}

func (d *description) add(label, value string) {
	if value != "" {
		d.rows = append(d.rows, [2]string{label, value})
	}
}

// describe collects the structured details of the typed errors
func describe(err error) description {
	var d description

	var notFound *errs.NotFoundError
	var validation *errs.ValidationError
	var constraint *errs.ConstraintViolationError
	var connection *errs.ConnectionError
	var timeout *errs.TransactionTimeoutError

	switch {
	case errors.As(err, &validation):
		d.model, d.operation = validation.Model, validation.Operation
		d.add("path", validation.Path)
	case errors.As(err, &notFound):
		d.model, d.operation = notFound.Model, notFound.Operation
	case errors.As(err, &constraint):
		d.model = constraint.Model
		d.add("kind", string(constraint.Kind))
		d.add("fields", strings.Join(constraint.Fields, ", "))
		d.add("constraint", constraint.Constraint)
	case errors.As(err, &connection):
		d.add("operation", connection.Operation)
	case errors.As(err, &timeout):
		d.add("phase", timeout.Phase)
		d.add("budget", timeout.Budget.String())
	}
	return d
}

func invocation(model, operation string) string {
	switch {
	case model == "":
		return operation + "()"
	case operation == "":
		return model
	default:
		return model + "." + operation + "()"
	}
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
