package slideshow

import "github.com/dixieflatline76/PhotoSaver/util/log"

var finderLog = log.Component("Finder")

// Finder locates the next displayable slot and keeps the slots outside the
// animating pair supplied with fresh photos.
type Finder struct {
	pool     *Pool
	views    *Views
	noPhotos func()
}

// NewFinder creates a Finder. noPhotos is called whenever a search finds the
// pool exhausted; it may be nil.
func NewFinder(pool *Pool, views *Views, noPhotos func()) *Finder {
	return &Finder{pool: pool, views: views, noPhotos: noPhotos}
}

func (f *Finder) exhausted() int {
	if f.noPhotos != nil {
		f.noPhotos()
	}
	return -1
}

// GetNext returns the first loaded slot at or after target, skipping the
// slots in the current animation pair (lastSelected, selected). Slots whose
// photo failed to load get their photo marked bad and a new one assigned on
// the way. It returns -1 when no slot is ready yet or the pool is exhausted.
func (f *Finder) GetNext(target, lastSelected, selected int) int {
	n := f.views.Len()
	if n == 0 {
		return -1
	}
	if !f.pool.HasUsable() {
		return f.exhausted()
	}
	inPair := func(i int) bool { return i == lastSelected || i == selected }

	if target >= 0 && target < n && !inPair(target) {
		if slot := f.views.Get(target); slot.IsLoaded() && f.current(slot) {
			return target
		}
	}

	start := ((target % n) + n) % n
	for i := 0; i < n; i++ {
		idx := (i + start) % n
		if inPair(idx) {
			continue
		}
		slot := f.views.Get(idx)
		if !f.current(slot) {
			// photo was marked bad elsewhere or predates a refresh
			if next, ok := f.pool.NextUsable(); ok {
				slot.SetPhoto(next)
			}
			continue
		}
		if slot.IsLoaded() {
			return idx
		}
		if slot.IsError() {
			photo := slot.Photo()
			if f.pool.MarkBad(photo.ID) {
				finderLog.Printf("photo %d failed to load, excluding %s", photo.ID, photo.URL)
			}
			if !f.pool.HasUsable() {
				return f.exhausted()
			}
			if next, ok := f.pool.NextUsable(); ok {
				slot.SetPhoto(next)
			}
		}
	}
	return -1
}

// current reports whether slot holds a usable photo of the active pool.
func (f *Finder) current(slot *ViewSlot) bool {
	p := slot.Photo()
	return slot.HasPhoto() && f.pool.Owns(p) && f.pool.IsUsable(p.ID)
}

// ReplacePhoto gives slot idx the next usable photo. Nothing happens for a
// negative index, a slot in the animation pair, or when the pool is too small
// to supply a photo that is not already on a slot.
func (f *Finder) ReplacePhoto(idx, selected, lastSelected int) {
	if idx < 0 || idx >= f.views.Len() || idx == selected || idx == lastSelected {
		return
	}
	if f.pool.Len() <= f.views.Len() {
		return
	}
	if next, ok := f.pool.NextUsable(); ok {
		f.views.Get(idx).SetPhoto(next)
	}
}

// ReplaceAll reassigns every slot outside the animation pair. Used after the
// pool is refilled.
func (f *Finder) ReplaceAll(selected, lastSelected int) {
	for i := 0; i < f.views.Len(); i++ {
		if i == selected || i == lastSelected {
			continue
		}
		next, ok := f.pool.NextUsable()
		if !ok {
			return
		}
		f.views.Get(i).SetPhoto(next)
	}
}
