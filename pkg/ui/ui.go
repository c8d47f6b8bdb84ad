// Package ui provides a unified interface for rendering output in different formats.
// It supports terminal (rich), text (plain), and JSON output formats.
package ui

import (
	"io"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/install"
	"github.com/arthur-debert/dotlink/pkg/status"
	"github.com/arthur-debert/dotlink/pkg/ui/json"
	"github.com/arthur-debert/dotlink/pkg/ui/terminal"
	"github.com/arthur-debert/dotlink/pkg/ui/text"
)

// Renderer is the common interface for all output renderers. Install runs
// are rendered as they happen through the install.Observer methods.
type Renderer interface {
	install.Observer

	// RenderStatus renders a complete status report
	RenderStatus(report *status.Report) error

	// RenderError renders a fatal error with appropriate formatting
	RenderError(err error) error
}

// Options tune renderers.
type Options struct {
	// NameWidth is the status name column width
	NameWidth int
}

// NewRenderer creates a new renderer based on the specified format.
// FormatAuto is resolved against output first.
func NewRenderer(format Format, output io.Writer, opts Options) (Renderer, error) {
	switch Resolve(format, output) {
	case FormatTerminal:
		return terminal.New(output, opts.NameWidth), nil
	case FormatText:
		return text.New(output, opts.NameWidth), nil
	case FormatJSON:
		return json.New(output), nil
	default:
		return nil, errors.Newf(errors.ErrUnknownFormat, "unknown format: %v", format)
	}
}
