// Package text renders install progress and status reports as line
// oriented text.
//
// The plain theme prints the exact lines users and scripts rely on. The
// terminal renderer reuses this layout with a styled theme.
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/install"
	"github.com/arthur-debert/dotlink/pkg/manifest"
	"github.com/arthur-debert/dotlink/pkg/status"
)

// DefaultNameWidth is the width of the name column in status reports.
const DefaultNameWidth = 20

const (
	indicatorOK  = "✓"
	indicatorBad = "✗"
)

// Paint styles a fragment of output.
type Paint func(s string) string

// Theme styles each kind of fragment. Nil entries print unstyled.
type Theme struct {
	Header       Paint
	Name         Paint
	DryRun       Paint
	Success      Paint
	Failed       Paint
	Skipped      Paint
	Warning      Paint
	Error        Paint
	NotInstalled Paint
	Muted        Paint
}

func apply(p Paint, s string) string {
	if p == nil {
		return s
	}
	return p(s)
}

// Renderer writes text output. It is not safe for concurrent use.
type Renderer struct {
	output    io.Writer
	theme     Theme
	nameWidth int
	empty     bool
}

// New creates a plain text renderer.
func New(output io.Writer, nameWidth int) *Renderer {
	return NewThemed(output, nameWidth, Theme{})
}

// NewThemed creates a text renderer that styles its output with theme.
func NewThemed(output io.Writer, nameWidth int, theme Theme) *Renderer {
	if nameWidth <= 0 {
		nameWidth = DefaultNameWidth
	}
	return &Renderer{
		output:    output,
		theme:     theme,
		nameWidth: nameWidth,
	}
}

func (r *Renderer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.output, format, args...)
}

// RunStarted prints the warnings and headers that precede entries.
func (r *Renderer) RunStarted(plan install.Plan) {
	if len(plan.Missing) > 0 {
		r.printf("%s\n", apply(r.theme.Warning, "Warning: Files not in manifest: "+strings.Join(plan.Missing, ", ")))
	}

	r.empty = len(plan.Entries) == 0
	if r.empty {
		r.printf("No dotfiles to install\n")
		return
	}

	if plan.DryRun {
		r.printf("%s\n\n", apply(r.theme.DryRun, "DRY RUN - No changes will be made"))
	}
}

// EntryStarted prints the line shown before any prompt for the entry.
func (r *Renderer) EntryStarted(entry manifest.Entry) {
	r.printf("Processing %s...\n", apply(r.theme.Name, entry.Name))
}

// EntryFinished prints the entry's message.
func (r *Renderer) EntryFinished(result install.Result) {
	var paint Paint
	switch result.Outcome {
	case install.Success:
		paint = r.theme.Success
	case install.Failed:
		paint = r.theme.Failed
	case install.Skipped:
		paint = r.theme.Skipped
	}
	r.printf("  %s\n", apply(paint, result.Message))
}

// RunFinished prints the summary. Runs with nothing to install have none.
func (r *Renderer) RunFinished(summary *install.Summary) {
	if r.empty {
		return
	}
	r.printf("\n%s\n", apply(r.theme.Header, "Summary:"))
	r.printf("  Successful: %s\n", apply(r.theme.Success, fmt.Sprint(summary.Succeeded)))
	r.printf("  Failed: %s\n", apply(r.theme.Failed, fmt.Sprint(summary.Failed)))
	r.printf("  Skipped: %s\n", apply(r.theme.Skipped, fmt.Sprint(summary.Skipped)))
}

// RenderStatus prints a status report.
func (r *Renderer) RenderStatus(report *status.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", apply(r.theme.Header, "Dotfile Status:"))

	for _, entry := range report.Entries {
		indicator := indicatorBad
		if entry.State == status.OK {
			indicator = indicatorOK
		}
		name := fmt.Sprintf("%-*s", r.nameWidth, entry.Name)
		paint := r.statePaint(entry.State)
		fmt.Fprintf(&b, "  %s %s %s\n", apply(paint, indicator), apply(r.theme.Name, name), apply(paint, entry.Message))
	}

	fmt.Fprintf(&b, "\n%s\n", apply(r.theme.Header, "Summary:"))
	fmt.Fprintf(&b, "  Installed correctly: %d\n", report.Installed)
	if report.NotInstalled > 0 {
		fmt.Fprintf(&b, "  Not installed: %d\n", report.NotInstalled)
	}
	if report.Warnings > 0 {
		fmt.Fprintf(&b, "  Warnings: %d\n", report.Warnings)
	}
	if report.Errors > 0 {
		fmt.Fprintf(&b, "  Errors: %d\n", report.Errors)
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

func (r *Renderer) statePaint(state status.State) Paint {
	switch state {
	case status.OK:
		return r.theme.Success
	case status.Warning:
		return r.theme.Warning
	case status.Error:
		return r.theme.Error
	default:
		return r.theme.NotInstalled
	}
}

// RenderError prints an error line.
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "Error: %s\n", apply(r.theme.Error, errors.Message(err)))
	return werr
}
