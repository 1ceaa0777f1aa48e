package slideshow

import (
	"math"
	"math/rand"

	"github.com/dixieflatline76/PhotoSaver/pkg/metrics"
	"github.com/dixieflatline76/PhotoSaver/pkg/provider"
)

// MaxAspectDelta is how far a photo's aspect may stray from the screen's
// before it is skipped when SkipBadAspect is on.
const MaxAspectDelta = 0.5

// Filter controls which source photos are admitted into a Pool.
type Filter struct {
	SkipBadAspect bool
	Sizing        SizingMode
	ScreenAspect  float64
}

func (f Filter) admits(p provider.SourcePhoto) bool {
	if !p.HasAspect() {
		return false
	}
	if f.SkipBadAspect && f.Sizing.crops() && f.ScreenAspect > 0 {
		return math.Abs(p.Asp-f.ScreenAspect) <= MaxAspectDelta
	}
	return true
}

// Pool is the ordered set of photos a session draws from. Photo IDs are pool
// positions. A photo marked bad stays in place but is never handed out again.
//
// A Pool is not safe for concurrent use; the Runner goroutine owns it.
type Pool struct {
	photos []Photo
	bad    []bool
	urls   map[string]struct{}
	usable int
	cursor int
	rnd    *rand.Rand
}

// NewPool creates an empty pool. rnd drives Shuffle.
func NewPool(rnd *rand.Rand) *Pool {
	return &Pool{urls: make(map[string]struct{}), rnd: rnd}
}

// AddFromSource appends the admissible photos of one source and returns how
// many were added. Duplicate URLs are dropped.
func (p *Pool) AddFromSource(photos []provider.SourcePhoto, sourceType string, f Filter) int {
	added := 0
	for _, src := range photos {
		if src.URL == "" || !f.admits(src) {
			continue
		}
		if _, dup := p.urls[src.URL]; dup {
			continue
		}
		p.urls[src.URL] = struct{}{}
		p.photos = append(p.photos, newPhoto(len(p.photos), src, sourceType))
		p.bad = append(p.bad, false)
		p.usable++
		added++
	}
	metrics.UsablePhotos.Set(float64(p.usable))
	return added
}

// Reset empties the pool so it can be refilled by a refresh.
func (p *Pool) Reset() {
	p.photos = nil
	p.bad = nil
	p.urls = make(map[string]struct{})
	p.usable = 0
	p.cursor = 0
	metrics.UsablePhotos.Set(0)
}

// Shuffle randomises the order in place and relabels IDs to match.
func (p *Pool) Shuffle() {
	for i := len(p.photos) - 1; i > 0; i-- {
		j := p.rnd.Intn(i + 1)
		p.photos[i], p.photos[j] = p.photos[j], p.photos[i]
		p.bad[i], p.bad[j] = p.bad[j], p.bad[i]
	}
	for i := range p.photos {
		p.photos[i].ID = i
	}
}

// MarkBad excludes a photo permanently. It returns true only for the call
// that actually changed the state.
func (p *Pool) MarkBad(id int) bool {
	if id < 0 || id >= len(p.photos) || p.bad[id] {
		return false
	}
	p.bad[id] = true
	p.usable--
	metrics.PhotosMarkedBad.Inc()
	metrics.UsablePhotos.Set(float64(p.usable))
	return true
}

// IsUsable reports whether id names a photo that is not marked bad.
func (p *Pool) IsUsable(id int) bool {
	return id >= 0 && id < len(p.photos) && !p.bad[id]
}

// Owns reports whether photo was handed out by this pool in its current
// fill. Photos left over from before a refresh do not match.
func (p *Pool) Owns(photo Photo) bool {
	return photo.ID >= 0 && photo.ID < len(p.photos) && p.photos[photo.ID].URL == photo.URL
}

// HasUsable reports whether at least one photo is not marked bad.
func (p *Pool) HasUsable() bool {
	return p.usable > 0
}

// Usable returns the number of photos not marked bad.
func (p *Pool) Usable() int {
	return p.usable
}

// NextUsable returns the first usable photo at or after the cursor, wrapping
// at the end, and moves the cursor past it. ok is false when every photo is bad.
func (p *Pool) NextUsable() (Photo, bool) {
	n := len(p.photos)
	if p.usable == 0 || n == 0 {
		return Photo{}, false
	}
	for i := 0; i < n; i++ {
		pos := (p.cursor + i) % n
		if p.bad[pos] {
			continue
		}
		p.cursor = (pos + 1) % n
		return p.photos[pos], true
	}
	return Photo{}, false
}

// Len returns the number of photos, bad ones included.
func (p *Pool) Len() int {
	return len(p.photos)
}

// Get returns the photo with the given id.
func (p *Pool) Get(id int) (Photo, bool) {
	if id < 0 || id >= len(p.photos) {
		return Photo{}, false
	}
	return p.photos[id], true
}

// Cursor returns the position NextUsable starts scanning from.
func (p *Pool) Cursor() int {
	return p.cursor
}

// SetCursor moves the scan position. Out of range values wrap.
func (p *Pool) SetCursor(pos int) {
	n := len(p.photos)
	if n == 0 {
		p.cursor = 0
		return
	}
	p.cursor = ((pos % n) + n) % n
}
