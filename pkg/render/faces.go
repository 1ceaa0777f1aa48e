package render

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// Face detection tuning.
const (
	faceConfidence  = 10.0
	faceIoU         = 0.2
	faceScaleFactor = 1.1
	faceShift       = 0.1
	faceMinSizePct  = 1
	faceMinSize     = 20
)

// FaceDetector finds faces so Cover crops keep them in frame.
type FaceDetector interface {
	Faces(img image.Image) []image.Rectangle
}

// PigoDetector detects faces with a pigo cascade.
type PigoDetector struct {
	classifier *pigo.Pigo
}

// LoadFaceDetector unpacks the pigo cascade file at path.
func LoadFaceDetector(path string) (*PigoDetector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading face cascade: %w", err)
	}
	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpacking face cascade: %w", err)
	}
	return &PigoDetector{classifier: classifier}, nil
}

// Faces returns the bounding boxes of confident detections in img coordinates.
func (d *PigoDetector) Faces(img image.Image) []image.Rectangle {
	b := img.Bounds()
	cols, rows := b.Dx(), b.Dy()
	minSize := max(min(cols, rows)*faceMinSizePct/100, faceMinSize)

	params := pigo.CascadeParams{
		MinSize:     minSize,
		MaxSize:     max(cols, rows),
		ShiftFactor: faceShift,
		ScaleFactor: faceScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(img),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}
	dets := d.classifier.RunCascade(params, 0)
	dets = d.classifier.ClusterDetections(dets, faceIoU)

	var faces []image.Rectangle
	for _, det := range dets {
		if det.Q < faceConfidence {
			continue
		}
		half := det.Scale / 2
		r := image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half)
		faces = append(faces, r.Add(b.Min).Intersect(b))
	}
	return faces
}

// faceCrop returns the largest rectangle of the screen's aspect inside
// bounds, centred on the faces as far as the bounds allow.
func faceCrop(bounds image.Rectangle, faces []image.Rectangle, screen image.Point) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	if len(faces) == 0 || w == 0 || h == 0 || screen.X <= 0 || screen.Y <= 0 {
		return image.Rectangle{}
	}
	target := float64(screen.X) / float64(screen.Y)

	cw, ch := w, h
	if float64(w)/float64(h) > target {
		cw = int(float64(h)*target + 0.5)
	} else {
		ch = int(float64(w)/target + 0.5)
	}

	union := faces[0]
	for _, f := range faces[1:] {
		union = union.Union(f)
	}
	cx := (union.Min.X+union.Max.X)/2 - bounds.Min.X
	cy := (union.Min.Y+union.Max.Y)/2 - bounds.Min.Y

	x0 := clamp(cx-cw/2, 0, w-cw)
	y0 := clamp(cy-ch/2, 0, h-ch)
	return image.Rect(x0, y0, x0+cw, y0+ch).Add(bounds.Min)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
