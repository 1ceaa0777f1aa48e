package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/dixieflatline76/PhotoSaver/pkg/slideshow"
)

var (
	backdrop    = color.Black
	frameBorder = color.White
)

// processor decodes photos and composes them onto a screen-sized frame.
type processor struct {
	resampler imaging.ResampleFilter
	faces     FaceDetector
}

// decode decodes an image from a byte slice with context awareness.
func (c *processor) decode(ctx context.Context, data []byte) (image.Image, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return img, nil
}

// compose draws img on a screen-sized frame according to the layout.
func (c *processor) compose(ctx context.Context, img image.Image, layout slideshow.Layout, screen image.Point) (image.Image, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("empty image")
	}
	aspect := float64(b.Dx()) / float64(b.Dy())
	pl := layout.Place(aspect, screen)
	r := &resizer{resampler: c.resampler}

	switch layout.Mode() {
	case slideshow.Cover:
		return c.cropImage(ctx, img, screen)

	case slideshow.Stretch:
		return r.resizeWithContext(ctx, img, screen.X, screen.Y)

	case slideshow.Frame:
		photo, err := r.resizeWithContext(ctx, img, pl.Size.X, pl.Size.Y)
		if err != nil {
			return nil, err
		}
		framed := imaging.New(pl.Size.X+2*pl.Border, pl.Size.Y+2*pl.Border, frameBorder)
		framed = imaging.Paste(framed, photo, image.Pt(pl.Border, pl.Border))
		canvas := imaging.New(screen.X, screen.Y, backdrop)
		return imaging.Paste(canvas, framed, pl.Offset.Sub(image.Pt(pl.Border, pl.Border))), nil

	default:
		photo, err := r.resizeWithContext(ctx, img, pl.Size.X, pl.Size.Y)
		if err != nil {
			return nil, err
		}
		canvas := imaging.New(screen.X, screen.Y, backdrop)
		return imaging.Paste(canvas, photo, pl.Offset), nil
	}
}

// cropImage fills the screen, keeping faces or else the most interesting
// part of img in frame.
func (c *processor) cropImage(ctx context.Context, img image.Image, screen image.Point) (image.Image, error) {
	r := &resizer{resampler: c.resampler}
	if c.faces != nil {
		if crop := faceCrop(img.Bounds(), c.faces.Faces(img), screen); !crop.Empty() {
			return r.resizeWithContext(ctx, imaging.Crop(img, crop), screen.X, screen.Y)
		}
	}
	analyzer := smartcrop.NewAnalyzer(r)

	type cropResult struct {
		crop image.Rectangle
		err  error
	}
	resultChan := make(chan cropResult, 1)

	go func() {
		topCrop, err := analyzer.FindBestCrop(img, screen.X, screen.Y)
		resultChan <- cropResult{crop: topCrop, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultChan:
		if result.err != nil || result.crop.Empty() {
			// plain centre crop
			return imaging.Fill(img, screen.X, screen.Y, imaging.Center, c.resampler), nil
		}
		cropped := imaging.Crop(img, result.crop)
		return r.resizeWithContext(ctx, cropped, screen.X, screen.Y)
	}
}

// resizer implements the smartcrop.Resizer interface and adds context awareness.
type resizer struct {
	resampler imaging.ResampleFilter
}

// Resize *doesn't* take a context here. The smartcrop.Resizer interface doesn't
// support contexts. We handle cancellation in resizeWithContext.
func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}

func (r *resizer) resizeWithContext(ctx context.Context, img image.Image, width, height int) (image.Image, error) {
	resultChan := make(chan image.Image, 1)

	go func() {
		resultChan <- imaging.Resize(img, width, height, r.resampler)
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultChan:
		return result, nil
	}
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
