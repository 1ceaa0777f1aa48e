package display

import (
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var fallbackText = color.RGBA{200, 200, 200, 255}

// lineHeight is the advance between lines of basicfont.Face7x13.
const lineHeight = 16

// MessageImage draws text centred on a black frame of the given size. It is
// shown when there are no photos.
func MessageImage(size image.Point, text string) image.Image {
	if size.X <= 0 || size.Y <= 0 {
		size = image.Pt(640, 360)
	}
	img := imaging.New(size.X, size.Y, color.Black)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	top := size.Y/2 - len(lines)*lineHeight/2
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fallbackText),
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		bounds, _ := font.BoundString(basicfont.Face7x13, line)
		width := bounds.Max.X.Ceil() - bounds.Min.X.Floor()
		d.Dot = fixed.Point26_6{
			X: fixed.I(max(0, (size.X-width)/2)),
			Y: fixed.I(top + (i+1)*lineHeight),
		}
		d.DrawString(line)
	}
	return img
}
