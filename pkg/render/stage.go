// Package render turns slideshow photos into screen-sized frames. A Stage
// loads and composes slot contents in the background and hands finished
// frames to a Presenter when the slideshow selects a slot.
package render

import (
	"context"
	"image"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/dixieflatline76/PhotoSaver/pkg/provider"
	"github.com/dixieflatline76/PhotoSaver/pkg/slideshow"
	"github.com/dixieflatline76/PhotoSaver/util/log"
)

var renderLog = log.Component("Render")

// MaxConcurrentLoads bounds how many photos are fetched and composed at once.
const MaxConcurrentLoads = 4

// Presenter puts frames on screen.
type Presenter interface {
	// Show replaces the visible frame. frame is nil when the slot has nothing
	// to show.
	Show(frame image.Image, caption string)
	// SetCaption updates the caption of the visible frame.
	SetCaption(caption string)
}

// Locator resolves a photo location to a place name.
type Locator interface {
	Locate(ctx context.Context, p provider.GeoPoint) (string, error)
}

type loadState int

const (
	stateEmpty loadState = iota
	stateLoading
	stateLoaded
	stateFailed
)

type slotState struct {
	gen     uint64
	state   loadState
	frame   image.Image
	caption string
}

// Option configures a Stage.
type Option func(*Stage)

// WithLocator adds place names to captions of photos with a location.
func WithLocator(l Locator) Option {
	return func(s *Stage) { s.locator = l }
}

// WithFaceDetector makes Cover crops centre on detected faces.
func WithFaceDetector(d FaceDetector) Option {
	return func(s *Stage) { s.proc.faces = d }
}

// WithResampler sets the resize filter. Defaults to Lanczos.
func WithResampler(f imaging.ResampleFilter) Option {
	return func(s *Stage) { s.proc.resampler = f }
}

// Stage implements slideshow.Renderer.
type Stage struct {
	ctx       context.Context
	cancel    context.CancelFunc
	screen    image.Point
	fetcher   Fetcher
	presenter Presenter
	locator   Locator
	proc      *processor
	sem       chan struct{}
	wg        sync.WaitGroup

	mu      sync.Mutex
	slots   map[int]*slotState
	visible int
}

// NewStage creates a Stage composing frames of the given screen size.
func NewStage(ctx context.Context, screen image.Point, fetcher Fetcher, presenter Presenter, opts ...Option) *Stage {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stage{
		ctx:       ctx,
		cancel:    cancel,
		screen:    screen,
		fetcher:   fetcher,
		presenter: presenter,
		proc:      &processor{resampler: imaging.Lanczos},
		sem:       make(chan struct{}, MaxConcurrentLoads),
		slots:     make(map[int]*slotState),
		visible:   -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close cancels pending loads and waits for them to finish.
func (s *Stage) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Stage) slot(i int) *slotState {
	st, ok := s.slots[i]
	if !ok {
		st = &slotState{}
		s.slots[i] = st
	}
	return st
}

// Load starts fetching and composing photo for slot. A newer Load for the
// same slot supersedes a pending one.
func (s *Stage) Load(slot int, photo slideshow.Photo, layout slideshow.Layout) {
	s.mu.Lock()
	st := s.slot(slot)
	st.gen++
	gen := st.gen
	st.state = stateLoading
	st.frame = nil
	st.caption = photo.Label
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		frame, err := s.prepare(photo, layout)

		s.mu.Lock()
		defer s.mu.Unlock()
		if st.gen != gen {
			return
		}
		if err != nil {
			if s.ctx.Err() == nil {
				renderLog.Printf("slot %d: %s failed: %v", slot, photo.URL, err)
			}
			st.state = stateFailed
			return
		}
		st.state = stateLoaded
		st.frame = frame
	}()
}

func (s *Stage) prepare(photo slideshow.Photo, layout slideshow.Layout) (image.Image, error) {
	select {
	case s.sem <- struct{}{}:
	case <-s.ctx.Done():
		return nil, s.ctx.Err()
	}
	defer func() { <-s.sem }()

	data, err := s.fetcher.Fetch(s.ctx, photo.URL)
	if err != nil {
		return nil, err
	}
	img, err := s.proc.decode(s.ctx, data)
	if err != nil {
		return nil, err
	}
	return s.proc.compose(s.ctx, img, layout, s.screen)
}

// Loaded reports whether slot holds a composed frame.
func (s *Stage) Loaded(slot int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.slots[slot]
	return ok && st.state == stateLoaded
}

// Failed reports whether the last load into slot failed.
func (s *Stage) Failed(slot int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.slots[slot]
	return ok && st.state == stateFailed
}

// Render sets the caption of slot and looks up the place name in the
// background when the photo has a location.
func (s *Stage) Render(slot int, photo slideshow.Photo) {
	s.mu.Lock()
	st := s.slot(slot)
	st.caption = photo.Label
	gen := st.gen
	s.mu.Unlock()

	if photo.Point == nil || s.locator == nil {
		return
	}
	point := *photo.Point
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		place, err := s.locator.Locate(s.ctx, point)
		if err != nil || place == "" {
			renderLog.Debugf("no place name for slot %d: %v", slot, err)
			return
		}

		s.mu.Lock()
		if st.gen != gen {
			s.mu.Unlock()
			return
		}
		st.caption = joinCaption(photo.Label, place)
		caption, visible := st.caption, s.visible == slot
		s.mu.Unlock()

		if visible {
			s.presenter.SetCaption(caption)
		}
	}()
}

// Select shows the frame of slot.
func (s *Stage) Select(slot, prev int) {
	s.mu.Lock()
	s.visible = slot
	st := s.slot(slot)
	frame, caption := st.frame, st.caption
	s.mu.Unlock()

	renderLog.Debugf("slot %d -> %d", prev, slot)
	s.presenter.Show(frame, caption)
}

func joinCaption(label, place string) string {
	if label == "" {
		return place
	}
	return label + "\n" + place
}
