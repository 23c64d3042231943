package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"

	xdraw "golang.org/x/image/draw"
)

// FallbackColor is the solid background used when image search yields nothing.
// Dark slate, matching the overlay aesthetics of the slide layouts.
var FallbackColor = color.RGBA{R: 44, G: 62, B: 80, A: 255}

// Searcher finds one landscape-oriented image for a query and returns its
// encoded bytes. Implementations live in pkg/imagesearch.
type Searcher interface {
	SearchImage(ctx context.Context, query string) ([]byte, error)
}

// BackgroundResolver turns a search term into a canvas-sized background.
// Resolution never fails: any search, fetch, or decode problem falls back to
// a solid color so background trouble cannot sink a job.
type BackgroundResolver struct {
	search Searcher
}

// NewBackgroundResolver creates a resolver on top of an image searcher.
func NewBackgroundResolver(s Searcher) *BackgroundResolver {
	return &BackgroundResolver{search: s}
}

// Resolve returns a CanvasWidth×CanvasHeight background for the query.
func (r *BackgroundResolver) Resolve(ctx context.Context, query string) image.Image {
	if r.search != nil {
		data, err := r.search.SearchImage(ctx, query)
		if err == nil && len(data) > 0 {
			src, _, err := image.Decode(bytes.NewReader(data))
			if err == nil {
				return resizeToCanvas(src)
			}
			slog.Warn("Background image decode failed, using fallback", "query", query, "error", err)
		} else if err != nil {
			slog.Warn("Background search failed, using fallback", "query", query, "error", err)
		}
	}

	return solidBackground()
}

// resizeToCanvas stretches the source to exactly the canvas resolution.
// Aspect ratio is deliberately discarded; the overlay and text layer hide
// moderate distortion, and cropping would lose image content instead.
func resizeToCanvas(src image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

func solidBackground() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{FallbackColor}, image.Point{}, draw.Src)
	return dst
}
