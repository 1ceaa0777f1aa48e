package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/PhotoSaver/pkg/slideshow"
)

var screen = image.Pt(160, 90)

func testImage(w, h int) image.Image {
	return imaging.New(w, h, color.NRGBA{R: 200, G: 50, B: 50, A: 255})
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func layout(t *testing.T, m slideshow.SizingMode) slideshow.Layout {
	t.Helper()
	l, err := slideshow.NewLayout(m, nil)
	require.NoError(t, err)
	return l
}

func TestDecode(t *testing.T) {
	p := &processor{resampler: imaging.Box}
	img, err := p.decode(context.Background(), encodePNG(t, testImage(4, 3)))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	_, err = p.decode(context.Background(), []byte("nope"))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.decode(ctx, encodePNG(t, testImage(4, 3)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComposeFillsScreen(t *testing.T) {
	p := &processor{resampler: imaging.Box}
	for _, m := range []slideshow.SizingMode{slideshow.Letterbox, slideshow.Cover, slideshow.Frame, slideshow.Stretch} {
		t.Run(m.String(), func(t *testing.T) {
			frame, err := p.compose(context.Background(), testImage(40, 60), layout(t, m), screen)
			require.NoError(t, err)
			assert.Equal(t, screen, frame.Bounds().Size())
		})
	}
}

func TestComposeLetterboxBars(t *testing.T) {
	p := &processor{resampler: imaging.Box}
	frame, err := p.compose(context.Background(), testImage(40, 60), layout(t, slideshow.Letterbox), screen)
	require.NoError(t, err)

	r, _, _, _ := frame.At(0, 45).RGBA()
	assert.Zero(t, r, "left bar is black")
	r, _, _, _ = frame.At(80, 45).RGBA()
	assert.NotZero(t, r, "photo in the middle")
}

func TestComposeFrameBorder(t *testing.T) {
	p := &processor{resampler: imaging.Box}
	frame, err := p.compose(context.Background(), testImage(160, 90), layout(t, slideshow.Frame), screen)
	require.NoError(t, err)

	pl := layout(t, slideshow.Frame).Place(160.0/90, screen)
	border := pl.Offset.Sub(image.Pt(pl.Border/2+1, pl.Border/2+1))
	_, g, _, _ := frame.At(border.X, border.Y).RGBA()
	assert.Equal(t, uint32(0xffff), g, "white border")
}

func TestComposeCancelled(t *testing.T) {
	p := &processor{resampler: imaging.Box}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.compose(ctx, testImage(40, 60), layout(t, slideshow.Cover), screen)
	assert.ErrorIs(t, err, context.Canceled)
}
