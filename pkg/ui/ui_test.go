package ui

import (
	"bytes"
	"testing"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/install"
	"github.com/arthur-debert/dotlink/pkg/manifest"
	"github.com/arthur-debert/dotlink/pkg/status"
	"github.com/arthur-debert/dotlink/pkg/ui/json"
	"github.com/arthur-debert/dotlink/pkg/ui/terminal"
	"github.com/arthur-debert/dotlink/pkg/ui/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"", FormatAuto},
		{"auto", FormatAuto},
		{"term", FormatTerminal},
		{"terminal", FormatTerminal},
		{"TEXT", FormatText},
		{"plain", FormatText},
		{"json", FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("xml")
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownFormat))
}

func TestFormatString(t *testing.T) {
	for _, f := range []Format{FormatAuto, FormatTerminal, FormatText, FormatJSON} {
		parsed, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}
	assert.Equal(t, "unknown", Format(42).String())
}

func TestDetectFormat(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.Equal(t, FormatText, DetectFormat(&bytes.Buffer{}), "non files are never terminals")

	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, FormatText, DetectFormat(&bytes.Buffer{}))
}

func TestResolve(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, FormatJSON, Resolve(FormatJSON, &buf))
	assert.Equal(t, FormatTerminal, Resolve(FormatTerminal, &buf))
	assert.Equal(t, FormatText, Resolve(FormatAuto, &buf))
}

func TestNewRenderer(t *testing.T) {
	var buf bytes.Buffer

	r, err := NewRenderer(FormatAuto, &buf, Options{})
	require.NoError(t, err)
	assert.IsType(t, &text.Renderer{}, r)

	r, err = NewRenderer(FormatTerminal, &buf, Options{})
	require.NoError(t, err)
	assert.IsType(t, &terminal.Renderer{}, r)

	r, err = NewRenderer(FormatJSON, &buf, Options{})
	require.NoError(t, err)
	assert.IsType(t, &json.Renderer{}, r)

	_, err = NewRenderer(Format(99), &buf, Options{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownFormat))
}

func TestTerminalRendererKeepsLayout(t *testing.T) {
	var buf bytes.Buffer
	r := terminal.New(&buf, 0)

	require.NoError(t, r.RenderStatus(&status.Report{
		Entries:   []status.EntryStatus{{Name: "bashrc", State: status.OK, Message: "Installed (symlinked to /repo/bashrc)"}},
		Installed: 1,
	}))

	out := buf.String()
	assert.Contains(t, out, "Dotfile Status:")
	assert.Contains(t, out, "bashrc")
	assert.Contains(t, out, "Installed correctly: 1")
	assert.Contains(t, out, " OK ")
}

func TestTerminalRendererInstall(t *testing.T) {
	var buf bytes.Buffer
	r := terminal.New(&buf, 0)

	entry := manifest.Entry{Name: "vimrc", Destination: "~/.vimrc"}
	r.RunStarted(install.Plan{Entries: []manifest.Entry{entry}})
	r.EntryStarted(entry)
	result := install.Result{Name: "vimrc", Outcome: install.Failed, Message: "Source file not found: /repo/vimrc"}
	r.EntryFinished(result)
	r.RunFinished(&install.Summary{Results: []install.Result{result}, Failed: 1})

	out := buf.String()
	assert.Contains(t, out, "Processing")
	assert.Contains(t, out, "Source file not found: /repo/vimrc")
	assert.Contains(t, out, " FAILED ")
}
