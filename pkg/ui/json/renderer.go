// Package json provides machine-readable JSON output
package json

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/install"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/arthur-debert/dotlink/pkg/manifest"
	"github.com/arthur-debert/dotlink/pkg/status"
	"github.com/rs/zerolog"
)

// Renderer provides JSON output for machine consumption. Install runs are
// written as a single document once the run finishes.
type Renderer struct {
	encoder *json.Encoder
	logger  zerolog.Logger
}

// New creates a new JSON renderer
func New(output io.Writer) *Renderer {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &Renderer{encoder: encoder, logger: logging.GetLogger("ui.json")}
}

func (r *Renderer) RunStarted(install.Plan) {}
func (r *Renderer) EntryStarted(manifest.Entry) {}
func (r *Renderer) EntryFinished(install.Result) {}

// RunFinished writes the summary.
func (r *Renderer) RunFinished(summary *install.Summary) {
	s := *summary
	if s.Results == nil {
		s.Results = []install.Result{}
	}
	doc := installDocument{Summary: &s, Errors: map[string]string{}}
	for _, result := range summary.Results {
		if result.Err != nil {
			doc.Errors[result.Name] = string(errors.GetErrorCode(result.Err))
		}
	}
	if err := r.encoder.Encode(doc); err != nil {
		r.logger.Error().Err(err).Msg("Failed to write install summary")
	}
}

type installDocument struct {
	*install.Summary
	// Errors maps failed entry names to their error code
	Errors map[string]string `json:"errors"`
}

// RenderStatus writes the report.
func (r *Renderer) RenderStatus(report *status.Report) error {
	return r.encoder.Encode(statusDocument{Report: report, AllOK: report.AllOK()})
}

type statusDocument struct {
	*status.Report
	AllOK bool `json:"all_ok"`
}

// RenderError renders an error as JSON
func (r *Renderer) RenderError(err error) error {
	return r.encoder.Encode(map[string]string{
		"error": errors.Message(err),
		"code":  string(errors.GetErrorCode(err)),
	})
}
