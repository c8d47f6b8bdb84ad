package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedStylesLoad(t *testing.T) {
	registry, err := Parse(embeddedStyles)
	require.NoError(t, err)

	for _, name := range []string{"Header", "Name", "Success", "Error", "Warning", "Skipped", "NotInstalled", "Muted", "DryRun"} {
		assert.Contains(t, registry, name)
	}
	assert.True(t, registry.Get("Header").GetBold())
	assert.True(t, registry.Get("Error").GetBold())
}

func TestParse(t *testing.T) {
	registry, err := Parse([]byte(`
colors:
  accent:
    light: "#000000"
    dark: "#FFFFFF"
styles:
  Accent:
    foreground: accent
    italic: true
  Unknown:
    foreground: nope
`))
	require.NoError(t, err)

	accent := registry.Get("Accent")
	assert.True(t, accent.GetItalic())
	assert.Equal(t, lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}, accent.GetForeground())

	_, ok := registry.Get("Unknown").GetForeground().(lipgloss.NoColor)
	assert.True(t, ok, "unknown colors are ignored")
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("styles: ["))
	assert.Error(t, err)
}

func TestGetUnknown(t *testing.T) {
	style := Get("DoesNotExist")
	assert.False(t, style.GetBold())
	assert.Equal(t, "x", style.Render("x"))
}
