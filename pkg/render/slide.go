// Package render rasterizes structured slide content onto fixed-resolution
// video frames.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"deckcast/pkg/model"
)

// Canvas resolution of every frame.
const (
	CanvasWidth  = 1920
	CanvasHeight = 1080
)

// overlayAlpha is the opacity of the black layer composited over the
// background so text stays legible on any image.
const overlayAlpha = 150

var (
	colorWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorLight = color.RGBA{R: 236, G: 240, B: 241, A: 255} // #ECF0F1
)

// Layout constants, per slide type.
const (
	titleY    = 400
	subtitleY = 550

	bulletsTitleX    = 100
	bulletsTitleY    = 200
	bulletsStartGap  = 150
	bulletsX         = 150
	bulletsItemGap   = 100
	bulletsWrapWidth = 60

	quoteStartY    = 400
	quoteLineGap   = 80
	quoteWrapWidth = 40

	otherTextY     = 900
	otherWrapWidth = 80
)

// Renderer composes slides onto backgrounds.
type Renderer struct {
	fonts FontSet
}

// NewRenderer creates a Renderer with the given font set.
func NewRenderer(fonts FontSet) *Renderer {
	return &Renderer{fonts: fonts}
}

// Fonts returns the renderer's font set.
func (r *Renderer) Fonts() FontSet {
	return r.fonts
}

// Render produces one frame from a slide and its background. The background
// is copied, never mutated, and the output is always exactly canvas-sized.
func (r *Renderer) Render(slide *model.Slide, background image.Image) *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	draw.Draw(frame, frame.Bounds(), background, image.Point{}, draw.Src)

	// Legibility overlay over the full canvas
	overlay := image.NewUniform(color.RGBA{A: overlayAlpha})
	draw.Draw(frame, frame.Bounds(), overlay, image.Point{}, draw.Over)

	switch slide.SlideType {
	case model.SlideTypeTitle:
		r.renderTitle(frame, slide)
	case model.SlideTypeBullets:
		r.renderBullets(frame, slide)
	case model.SlideTypeQuote:
		r.renderQuote(frame, slide)
	default:
		r.renderOther(frame, slide)
	}

	return frame
}

func (r *Renderer) renderTitle(frame *image.RGBA, slide *model.Slide) {
	drawText(frame, r.fonts.Title, CenteredX(r.fonts.Title, slide.Title), titleY, colorWhite, slide.Title)

	if slide.Subtitle != "" {
		drawText(frame, r.fonts.Text, CenteredX(r.fonts.Text, slide.Subtitle), subtitleY, colorLight, slide.Subtitle)
	}
}

func (r *Renderer) renderBullets(frame *image.RGBA, slide *model.Slide) {
	drawText(frame, r.fonts.Title, bulletsTitleX, bulletsTitleY, colorWhite, slide.Title)

	y := bulletsTitleY + bulletsStartGap
	for _, point := range slide.Content {
		lines := Wrap(point, bulletsWrapWidth)
		lineY := y
		for i, line := range lines {
			if i == 0 {
				line = "• " + line
			} else {
				line = "  " + line
			}
			drawText(frame, r.fonts.Text, bulletsX, lineY, colorLight, line)
			lineY += lineHeight(r.fonts.Text)
		}
		// Items advance by a fixed gap; long wrapped items may overflow the
		// canvas rather than being clipped.
		y += bulletsItemGap
	}
}

func (r *Renderer) renderQuote(frame *image.RGBA, slide *model.Slide) {
	body := strings.Join(slide.Content, " ")
	quoted := "“" + body + "”"

	y := quoteStartY
	for _, line := range Wrap(quoted, quoteWrapWidth) {
		drawText(frame, r.fonts.Text, CenteredX(r.fonts.Text, line), y, colorLight, line)
		y += quoteLineGap
	}
}

func (r *Renderer) renderOther(frame *image.RGBA, slide *model.Slide) {
	drawText(frame, r.fonts.Title, bulletsTitleX, bulletsTitleY, colorWhite, slide.Title)

	if len(slide.Content) == 0 {
		return
	}

	y := otherTextY
	for _, line := range Wrap(slide.Content[0], otherWrapWidth) {
		drawText(frame, r.fonts.Small, bulletsTitleX, y, colorLight, line)
		y += lineHeight(r.fonts.Small)
	}
}

// CenteredX returns the x origin that horizontally centers text on the
// canvas, using the measured bounding width in the given face.
func CenteredX(face font.Face, text string) int {
	w := font.MeasureString(face, text).Ceil()
	return (CanvasWidth - w) / 2
}

// drawText draws a single line with (x, y) as the top-left corner of the
// text box, matching raster-origin layout coordinates.
func drawText(dst *image.RGBA, face font.Face, x, y int, col color.Color, text string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

func lineHeight(face font.Face) int {
	return face.Metrics().Height.Ceil() + 4
}
