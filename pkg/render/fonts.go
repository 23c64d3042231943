package render

import (
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Font point sizes for the three text roles.
const (
	TitleFontSize = 80
	TextFontSize  = 50
	SmallFontSize = 40
)

// FontSet holds the faces used by the slide layouts.
type FontSet struct {
	Title font.Face // Large bold, slide titles
	Text  font.Face // Regular, body text and subtitles
	Small font.Face // Regular, footnote-sized free text
}

// LoadFonts builds the font set. Resolution order per face: a truetype file
// in fontDir (DejaVuSans-Bold.ttf / DejaVuSans.ttf), then the bundled Go
// fonts, then the built-in bitmap face. Font loading never fails the job.
func LoadFonts(fontDir string) FontSet {
	bold := loadFirst(fontDir, "DejaVuSans-Bold.ttf", gobold.TTF)
	regular := loadFirst(fontDir, "DejaVuSans.ttf", goregular.TTF)

	return FontSet{
		Title: faceOrFallback(bold, TitleFontSize),
		Text:  faceOrFallback(regular, TextFontSize),
		Small: faceOrFallback(regular, SmallFontSize),
	}
}

// loadFirst returns the parsed font from disk if present, else the bundled one.
func loadFirst(fontDir, filename string, bundled []byte) *opentype.Font {
	if fontDir != "" {
		data, err := os.ReadFile(filepath.Join(fontDir, filename))
		if err == nil {
			if f, err := opentype.Parse(data); err == nil {
				return f
			}
			slog.Warn("Failed to parse font file, using bundled font", "file", filename)
		}
	}

	f, err := opentype.Parse(bundled)
	if err != nil {
		// Bundled fonts are compiled in; a parse failure means a broken build.
		slog.Error("Failed to parse bundled font", "error", err)
		return nil
	}
	return f
}

func faceOrFallback(f *opentype.Font, size float64) font.Face {
	if f == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		slog.Warn("Failed to create font face, using built-in default", "size", size, "error", err)
		return basicfont.Face7x13
	}
	return face
}
