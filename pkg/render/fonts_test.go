package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFontsBundled(t *testing.T) {
	fonts := LoadFonts("")

	require.NotNil(t, fonts.Title)
	require.NotNil(t, fonts.Text)
	require.NotNil(t, fonts.Small)

	// Title face is larger than the body face.
	assert.Greater(t, fonts.Title.Metrics().Height.Ceil(), fonts.Text.Metrics().Height.Ceil())
	assert.Greater(t, fonts.Text.Metrics().Height.Ceil(), fonts.Small.Metrics().Height.Ceil())
}

func TestLoadFontsMissingDirFallsBack(t *testing.T) {
	fonts := LoadFonts("/nonexistent/fonts")

	// Bundled Go fonts still load; no panic, no nil faces.
	require.NotNil(t, fonts.Title)
	assert.Greater(t, fonts.Title.Metrics().Height.Ceil(), 0)
}

func TestLoadFontsBadFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DejaVuSans.ttf"), []byte("junk"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DejaVuSans-Bold.ttf"), []byte("junk"), 0o644))

	fonts := LoadFonts(dir)
	require.NotNil(t, fonts.Title)
	assert.Greater(t, fonts.Title.Metrics().Height.Ceil(), fonts.Text.Metrics().Height.Ceil())
}
