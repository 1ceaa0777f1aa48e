// Package slideshow is the playback engine of the screensaver. A Session owns
// the photo Pool, the fixed set of view slots, the Finder that picks the next
// displayable slot, the History ring used for stepping back, and the Runner
// that drives all of them from a single goroutine.
package slideshow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dixieflatline76/PhotoSaver/pkg/provider"
)

var (
	// ErrNoPhotos means the session has nothing left to show.
	ErrNoPhotos = errors.New("no photos available")
	// ErrUnknownSizing is returned for a sizing value outside 0..4.
	ErrUnknownSizing = errors.New("unknown photo sizing")
)

// Photo is one entry of a Pool. It is copied by value into view slots.
type Photo struct {
	ID          int
	URL         string
	Author      string
	SourceType  string
	AspectRatio float64
	Extra       any
	Point       *provider.GeoPoint
	Label       string
}

func newPhoto(id int, src provider.SourcePhoto, sourceType string) Photo {
	return Photo{
		ID:          id,
		URL:         src.URL,
		Author:      src.Author,
		SourceType:  sourceType,
		AspectRatio: src.Asp,
		Extra:       src.Ex,
		Point:       src.Point,
		Label:       photoLabel(src.Author, sourceType),
	}
}

// photoLabel builds the caption once. "Google User" style types keep only
// the service name.
func photoLabel(author, sourceType string) string {
	source := strings.TrimSpace(sourceType)
	if i := strings.Index(source, " User"); i > 0 {
		source = source[:i]
	}
	author = strings.TrimSpace(author)
	if author != "" {
		if source == "" {
			return author
		}
		return author + "\n" + source
	}
	if source == "" {
		return ""
	}
	return "Photo from " + source
}

// SizingMode selects how a photo is fitted to the screen.
type SizingMode int

const (
	Letterbox SizingMode = iota // fit inside, bars on two sides
	Cover                       // fill the screen, crop the overflow
	Frame                       // fit inside a bordered frame
	Stretch                     // fill the screen, ignore aspect
	Random                      // pick one of the above per view
)

var sizingNames = [...]string{"Letterbox", "Cover", "Frame", "Stretch", "Random"}

func (m SizingMode) String() string {
	if m < 0 || int(m) >= len(sizingNames) {
		return fmt.Sprintf("SizingMode(%d)", int(m))
	}
	return sizingNames[m]
}

// ParseSizing converts the stored preference value into a SizingMode.
func ParseSizing(v int) (SizingMode, error) {
	if v < int(Letterbox) || v > int(Random) {
		return Letterbox, fmt.Errorf("%w: %d", ErrUnknownSizing, v)
	}
	return SizingMode(v), nil
}

// crops reports whether the mode distorts or cuts photos whose aspect is far
// from the screen's. Only those modes honour the skip-bad-aspect preference.
func (m SizingMode) crops() bool {
	return m == Cover || m == Stretch
}
