// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"

	"github.com/arthur-debert/dotlink/pkg/install"
	"github.com/arthur-debert/dotlink/pkg/status"
	"github.com/arthur-debert/dotlink/pkg/ui/styles"
	"github.com/arthur-debert/dotlink/pkg/ui/text"
	"github.com/pterm/pterm"
)

// Renderer is the text layout painted with the dotlink styles, followed by
// a verdict badge.
type Renderer struct {
	*text.Renderer
	output io.Writer
}

// New creates a terminal renderer.
func New(output io.Writer, nameWidth int) *Renderer {
	return &Renderer{
		Renderer: text.NewThemed(output, nameWidth, Theme(styles.Default())),
		output:   output,
	}
}

// Theme maps the style registry onto the text layout.
func Theme(registry styles.Registry) text.Theme {
	paint := func(name string) text.Paint {
		style := registry.Get(name)
		return func(s string) string { return style.Render(s) }
	}
	return text.Theme{
		Header:       paint("Header"),
		Name:         paint("Name"),
		DryRun:       paint("DryRun"),
		Success:      paint("Success"),
		Failed:       paint("Error"),
		Skipped:      paint("Skipped"),
		Warning:      paint("Warning"),
		Error:        paint("Error"),
		NotInstalled: paint("NotInstalled"),
		Muted:        paint("Muted"),
	}
}

// RunFinished prints the summary and a verdict badge.
func (r *Renderer) RunFinished(summary *install.Summary) {
	r.Renderer.RunFinished(summary)
	if len(summary.Results) == 0 {
		return
	}

	switch {
	case summary.HasFailures():
		r.badge(pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold), "FAILED", fmt.Sprintf("%d of %d entries failed", summary.Failed, len(summary.Results)))
	case summary.DryRun:
		r.badge(pterm.NewStyle(pterm.BgBlue, pterm.FgWhite), "DRY RUN", "nothing was changed")
	default:
		r.badge(pterm.NewStyle(pterm.BgGreen, pterm.FgBlack), "DONE", "all entries processed")
	}
}

// RenderStatus prints the report and a verdict badge.
func (r *Renderer) RenderStatus(report *status.Report) error {
	if err := r.Renderer.RenderStatus(report); err != nil {
		return err
	}

	if report.AllOK() {
		r.badge(pterm.NewStyle(pterm.BgGreen, pterm.FgBlack), "OK", "everything is linked")
		return nil
	}
	r.badge(StateStyle(worst(report)), "ATTENTION", fmt.Sprintf("%d of %d entries need attention", len(report.Entries)-report.Installed, len(report.Entries)))
	return nil
}

func (r *Renderer) badge(style *pterm.Style, label, detail string) {
	muted := styles.Get("Muted")
	_, _ = fmt.Fprintf(r.output, "\n%s %s\n", style.Sprint(" "+label+" "), muted.Render(detail))
}

// StateStyle returns the badge style for a state.
func StateStyle(state status.State) *pterm.Style {
	switch state {
	case status.OK:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgBlack)
	case status.Warning:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	case status.Error:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// worst returns the most severe state in the report.
func worst(report *status.Report) status.State {
	switch {
	case report.Errors > 0:
		return status.Error
	case report.Warnings > 0:
		return status.Warning
	case report.NotInstalled > 0:
		return status.NotInstalled
	default:
		return status.OK
	}
}
