package slideshow

import (
	"image"
	"math"
	"math/rand"
)

// FrameFill is the fraction of the screen a framed photo may occupy.
const FrameFill = 0.8

// Placement is where and how large a photo is drawn on a screen.
type Placement struct {
	Size   image.Point // scaled photo size
	Offset image.Point // top-left corner on screen, negative when cropped
	Crop   bool        // the scaled photo overflows the screen
	Border int         // frame border in pixels
}

// Layout computes a Placement for a photo aspect on a screen.
type Layout interface {
	Mode() SizingMode
	Place(aspect float64, screen image.Point) Placement
}

// NewLayout returns the layout for mode. Random resolves to one of the four
// concrete layouts using rnd.
func NewLayout(mode SizingMode, rnd *rand.Rand) (Layout, error) {
	if mode == Random {
		mode = SizingMode(rnd.Intn(int(Random)))
	}
	switch mode {
	case Letterbox:
		return letterboxLayout{}, nil
	case Cover:
		return coverLayout{}, nil
	case Frame:
		return frameLayout{}, nil
	case Stretch:
		return stretchLayout{}, nil
	}
	return nil, ErrUnknownSizing
}

type letterboxLayout struct{}

func (letterboxLayout) Mode() SizingMode { return Letterbox }

func (letterboxLayout) Place(aspect float64, screen image.Point) Placement {
	size := fitInside(aspect, screen)
	return Placement{Size: size, Offset: center(size, screen)}
}

type coverLayout struct{}

func (coverLayout) Mode() SizingMode { return Cover }

func (coverLayout) Place(aspect float64, screen image.Point) Placement {
	aspect = sane(aspect, screen)
	var size image.Point
	if aspect > screenAspect(screen) {
		size = image.Pt(round(float64(screen.Y)*aspect), screen.Y)
	} else {
		size = image.Pt(screen.X, round(float64(screen.X)/aspect))
	}
	return Placement{
		Size:   size,
		Offset: center(size, screen),
		Crop:   size.X > screen.X || size.Y > screen.Y,
	}
}

type frameLayout struct{}

func (frameLayout) Mode() SizingMode { return Frame }

func (frameLayout) Place(aspect float64, screen image.Point) Placement {
	inner := image.Pt(round(float64(screen.X)*FrameFill), round(float64(screen.Y)*FrameFill))
	size := fitInside(aspect, inner)
	border := max(4, round(float64(min(screen.X, screen.Y))*0.015))
	return Placement{Size: size, Offset: center(size, screen), Border: border}
}

type stretchLayout struct{}

func (stretchLayout) Mode() SizingMode { return Stretch }

func (stretchLayout) Place(_ float64, screen image.Point) Placement {
	return Placement{Size: screen}
}

func fitInside(aspect float64, box image.Point) image.Point {
	aspect = sane(aspect, box)
	if aspect > screenAspect(box) {
		return image.Pt(box.X, round(float64(box.X)/aspect))
	}
	return image.Pt(round(float64(box.Y)*aspect), box.Y)
}

func center(size, screen image.Point) image.Point {
	return image.Pt((screen.X-size.X)/2, (screen.Y-size.Y)/2)
}

func screenAspect(screen image.Point) float64 {
	if screen.Y == 0 {
		return 1
	}
	return float64(screen.X) / float64(screen.Y)
}

// sane replaces an unusable aspect with the screen's so layout math stays finite.
func sane(aspect float64, screen image.Point) float64 {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		return screenAspect(screen)
	}
	return aspect
}

func round(v float64) int {
	return int(math.Round(v))
}
