package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	data []byte
	err  error
}

func (s *stubSearcher) SearchImage(ctx context.Context, query string) ([]byte, error) {
	return s.data, s.err
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestResolveFallbackOnSearchError(t *testing.T) {
	r := NewBackgroundResolver(&stubSearcher{err: errors.New("network down")})

	img := r.Resolve(context.Background(), "mountains")
	require.NotNil(t, img)
	assert.Equal(t, image.Rect(0, 0, CanvasWidth, CanvasHeight), img.Bounds())

	// Solid fallback color everywhere
	assert.Equal(t, FallbackColor, img.At(0, 0))
	assert.Equal(t, FallbackColor, img.At(CanvasWidth-1, CanvasHeight-1))
}

func TestResolveFallbackOnEmptyResult(t *testing.T) {
	r := NewBackgroundResolver(&stubSearcher{data: nil})

	img := r.Resolve(context.Background(), "")
	assert.Equal(t, image.Rect(0, 0, CanvasWidth, CanvasHeight), img.Bounds())
	assert.Equal(t, FallbackColor, img.At(960, 540))
}

func TestResolveFallbackOnDecodeError(t *testing.T) {
	r := NewBackgroundResolver(&stubSearcher{data: []byte("not an image")})

	img := r.Resolve(context.Background(), "abstract")
	assert.Equal(t, image.Rect(0, 0, CanvasWidth, CanvasHeight), img.Bounds())
	assert.Equal(t, FallbackColor, img.At(10, 10))
}

func TestResolveResizesFoundImage(t *testing.T) {
	// A small solid red source must be stretched to fill the whole canvas.
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	red := color.RGBA{R: 200, A: 255}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.Set(x, y, red)
		}
	}

	r := NewBackgroundResolver(&stubSearcher{data: encodePNG(t, src)})

	img := r.Resolve(context.Background(), "red")
	require.Equal(t, image.Rect(0, 0, CanvasWidth, CanvasHeight), img.Bounds())

	got := color.RGBAModel.Convert(img.At(960, 540)).(color.RGBA)
	assert.InDelta(t, 200, int(got.R), 10)
	assert.InDelta(t, 0, int(got.G), 10)
}

func TestResolveNilSearcher(t *testing.T) {
	r := NewBackgroundResolver(nil)

	img := r.Resolve(context.Background(), "anything")
	assert.Equal(t, image.Rect(0, 0, CanvasWidth, CanvasHeight), img.Bounds())
	assert.Equal(t, FallbackColor, img.At(0, 0))
}
