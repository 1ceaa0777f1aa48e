package slideshow

import (
	"context"
	"image"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/dixieflatline76/PhotoSaver/pkg/provider"
	"github.com/dixieflatline76/PhotoSaver/util/log"
)

var sessionLog = log.Component("Session")

// MaxViews is the most slots a session creates.
const MaxViews = 20

// SessionOptions holds everything a Session needs besides its settings and
// photos. Zero values select the defaults.
type SessionOptions struct {
	Screen   image.Point
	MaxViews int
	Rand     *rand.Rand
	Runner   RunnerOptions
}

// Session is one playback of the slideshow.
type Session struct {
	ID       string
	settings Settings
	screen   image.Point
	rnd      *rand.Rand

	pool    *Pool
	views   *Views
	finder  *Finder
	history *History
	runner  *Runner
}

// NewSession builds the pool from batches, creates the slots and fills them.
// It returns ErrNoPhotos when no photo survives filtering.
func NewSession(settings Settings, batches []provider.Batch, renderer Renderer, opts SessionOptions) (*Session, error) {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.MaxViews <= 0 {
		opts.MaxViews = MaxViews
	}
	if settings.TransitionTime <= 0 {
		settings.TransitionTime = MinTransitionTime
	}

	s := &Session{
		ID:       uuid.NewString(),
		settings: settings,
		screen:   opts.Screen,
		rnd:      opts.Rand,
		pool:     NewPool(opts.Rand),
	}
	s.fill(batches)
	if s.pool.Len() == 0 {
		return nil, ErrNoPhotos
	}

	n := min(s.pool.Len(), opts.MaxViews)
	layouts := make([]Layout, n)
	for i := range layouts {
		l, err := NewLayout(settings.Sizing, opts.Rand)
		if err != nil {
			sessionLog.Printf("%v, using letterbox", err)
			l = letterboxLayout{}
		}
		layouts[i] = l
	}
	s.views = NewViews(layouts, renderer)
	for i := 0; i < n; i++ {
		if p, ok := s.pool.NextUsable(); ok {
			s.views.Get(i).SetPhoto(p)
		}
	}

	s.history = NewHistory(min(s.pool.Len(), MaxHistory))
	s.finder = NewFinder(s.pool, s.views, func() { s.runner.NoPhotos() })
	s.runner = NewRunner(s.pool, s.views, s.finder, s.history, settings.TransitionTime, opts.Runner)

	sessionLog.Printf("%s with %d photos in %d views, sizing %s", s.ID, s.pool.Len(), n, settings.Sizing)
	return s, nil
}

func (s *Session) filter() Filter {
	f := Filter{SkipBadAspect: s.settings.SkipBadAspect, Sizing: s.settings.Sizing}
	if s.screen.X > 0 && s.screen.Y > 0 {
		f.ScreenAspect = screenAspect(s.screen)
	}
	return f
}

func (s *Session) fill(batches []provider.Batch) {
	f := s.filter()
	for _, b := range batches {
		added := s.pool.AddFromSource(b.Photos, b.SourceType, f)
		sessionLog.Debugf("%d of %d photos from %s", added, len(b.Photos), b.SourceType)
	}
	if s.settings.Shuffle {
		s.pool.Shuffle()
	}
}

// Start begins playback.
func (s *Session) Start(ctx context.Context) error {
	return s.runner.Start(ctx)
}

// Refresh replaces the pool with new photos. The visible slot and the one
// animating out keep their photos; every other slot is reassigned and the
// history is cleared. If no photo survives, the current pool is kept and
// ErrNoPhotos is returned.
func (s *Session) Refresh(batches []provider.Batch) error {
	var err error
	s.runner.Do(func() {
		probe := NewPool(s.rnd)
		f := s.filter()
		for _, b := range batches {
			probe.AddFromSource(b.Photos, b.SourceType, f)
		}
		if probe.Len() == 0 {
			err = ErrNoPhotos
			return
		}
		s.pool.Reset()
		s.fill(batches)
		s.runner.refresh()
		sessionLog.Printf("%s refreshed with %d photos", s.ID, s.pool.Len())
	})
	return err
}

// Close stops playback and waits for the loop to exit.
func (s *Session) Close() {
	s.runner.Stop()
}

// Runner returns the session's runner for navigation commands.
func (s *Session) Runner() *Runner { return s.runner }

// Settings returns the settings the session was created with.
func (s *Session) Settings() Settings { return s.settings }

// Views returns the slots. Only touch them from within Runner.Do.
func (s *Session) Views() *Views { return s.views }

// Pool returns the photo pool. Only touch it from within Runner.Do.
func (s *Session) Pool() *Pool { return s.pool }

// History returns the transition history. Only touch it from within Runner.Do.
func (s *Session) History() *History { return s.history }
