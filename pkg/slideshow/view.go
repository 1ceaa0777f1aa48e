package slideshow

// Renderer is the presentation side of the view slots. Loading is
// asynchronous: Load only starts it, Loaded and Failed report the outcome.
// Implementations must be safe to call from the Runner goroutine while their
// own loaders complete in the background.
type Renderer interface {
	// Load starts fetching and composing photo into slot.
	Load(slot int, photo Photo, layout Layout)
	// Loaded reports whether slot holds a fully decoded photo.
	Loaded(slot int) bool
	// Failed reports whether the last load into slot failed.
	Failed(slot int) bool
	// Render refreshes the caption and overlays of slot for photo.
	Render(slot int, photo Photo)
	// Select makes slot the visible one; prev is the slot animating out, or -1.
	Select(slot, prev int)
}

// ViewSlot is one of the fixed display positions. It keeps its own copy of
// the photo it was given so later pool changes do not reach it.
type ViewSlot struct {
	index    int
	photo    Photo
	hasPhoto bool
	layout   Layout
	renderer Renderer
}

// Index returns the slot position.
func (v *ViewSlot) Index() int { return v.index }

// Layout returns the layout chosen for the slot.
func (v *ViewSlot) Layout() Layout { return v.layout }

// Photo returns the photo assigned to the slot.
func (v *ViewSlot) Photo() Photo { return v.photo }

// HasPhoto reports whether a photo was ever assigned.
func (v *ViewSlot) HasPhoto() bool { return v.hasPhoto }

// SetPhoto assigns photo and starts loading it.
func (v *ViewSlot) SetPhoto(photo Photo) {
	v.photo = photo
	v.hasPhoto = true
	v.renderer.Load(v.index, photo, v.layout)
}

// IsLoaded reports whether the slot's photo is ready to show.
func (v *ViewSlot) IsLoaded() bool {
	return v.hasPhoto && v.renderer.Loaded(v.index)
}

// IsError reports whether the slot's photo failed to load.
func (v *ViewSlot) IsError() bool {
	return v.hasPhoto && v.renderer.Failed(v.index)
}

// Render pushes the slot's photo details to the presentation.
func (v *ViewSlot) Render() {
	if v.hasPhoto {
		v.renderer.Render(v.index, v.photo)
	}
}

// Views is the fixed, ordered set of slots. Its length never changes.
type Views struct {
	slots    []*ViewSlot
	renderer Renderer
	selected int
}

// NewViews creates one slot per layout.
func NewViews(layouts []Layout, renderer Renderer) *Views {
	vs := &Views{renderer: renderer, selected: -1}
	for i, l := range layouts {
		vs.slots = append(vs.slots, &ViewSlot{index: i, layout: l, renderer: renderer})
	}
	return vs
}

// Len returns the slot count.
func (vs *Views) Len() int { return len(vs.slots) }

// Get returns slot i, or nil when out of range.
func (vs *Views) Get(i int) *ViewSlot {
	if i < 0 || i >= len(vs.slots) {
		return nil
	}
	return vs.slots[i]
}

// Selected returns the visible slot, -1 before the first transition.
func (vs *Views) Selected() int { return vs.selected }

// Select switches the visible slot and returns the previous one.
func (vs *Views) Select(i int) int {
	prev := vs.selected
	vs.selected = i
	vs.renderer.Select(i, prev)
	return prev
}
