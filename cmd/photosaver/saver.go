package main

import (
	"context"
	"errors"
	"image"
	"os"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"golang.org/x/time/rate"

	"github.com/dixieflatline76/PhotoSaver/asset"
	"github.com/dixieflatline76/PhotoSaver/config"
	"github.com/dixieflatline76/PhotoSaver/pkg/api"
	"github.com/dixieflatline76/PhotoSaver/pkg/display"
	"github.com/dixieflatline76/PhotoSaver/pkg/fetch"
	"github.com/dixieflatline76/PhotoSaver/pkg/geo"
	"github.com/dixieflatline76/PhotoSaver/pkg/hotkey"
	"github.com/dixieflatline76/PhotoSaver/pkg/provider"
	"github.com/dixieflatline76/PhotoSaver/pkg/render"
	"github.com/dixieflatline76/PhotoSaver/pkg/slideshow"
	"github.com/dixieflatline76/PhotoSaver/pkg/sysinfo"
	"github.com/dixieflatline76/PhotoSaver/util/log"

	// Photo sources register themselves.
	_ "github.com/dixieflatline76/PhotoSaver/pkg/provider/feed"
	_ "github.com/dixieflatline76/PhotoSaver/pkg/provider/gallery"
	_ "github.com/dixieflatline76/PhotoSaver/pkg/provider/local"
	_ "github.com/dixieflatline76/PhotoSaver/pkg/provider/pexels"
)

const (
	refreshInterval = time.Hour
	requestTimeout  = 30 * time.Second
)

var defaultScreen = image.Pt(1920, 1080)

// saver owns the running show: one window, its render stage and session.
type saver struct {
	app    fyne.App
	cfg    *config.AppConfig
	opts   options
	assets *asset.Manager
	client *fetch.Client
	geo    *geo.Locator
	faces  render.FaceDetector
	api    *api.Server

	mu      sync.Mutex
	window  *display.Window
	stage   *render.Stage
	session *slideshow.Session
	cancel  context.CancelFunc
}

func newSaver(a fyne.App, cfg *config.AppConfig, opts options) *saver {
	client := fetch.NewClient(fetch.NewHTTPClient(config.AppName+"/"+config.AppVersion, requestTimeout), fetch.WithRateLimit(rate.Limit(4), 4))
	s := &saver{
		app:    a,
		cfg:    cfg,
		opts:   opts,
		assets: asset.NewManager(),
		client: client,
		geo:    geo.NewLocator(client, ""),
	}
	if opts.faceModel != "" {
		d, err := render.LoadFaceDetector(opts.faceModel)
		if err != nil {
			log.Printf("Face detection disabled: %v", err)
		} else {
			s.faces = d
		}
	}
	return s
}

// started runs on the fyne goroutine once the event loop is up.
func (s *saver) started() {
	if s.cfg.GetAPIEnabled() {
		s.api = api.NewServer(s.opts.apiAddr)
		s.api.SetHooks(api.Hooks{
			CloseAll:    func() { fyne.Do(s.closeShow) },
			ShowPreview: func() { fyne.Do(func() { s.show(true) }) },
			IsShowing:   s.isShowing,
		})
		go func() {
			if err := s.api.Start(); err != nil {
				log.Printf("[API] server stopped: %v", err)
			}
		}()
	}
	if !s.opts.daemon {
		s.show(s.opts.preview)
	}
}

func (s *saver) isShowing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window != nil
}

// show opens the window and starts a session in the background. It is a
// no-op while a show is already running.
func (s *saver) show(preview bool) {
	s.mu.Lock()
	if s.window != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := display.NewWindow(s.app, config.AppName, preview)
	w.OnClose = func() { fyne.Do(s.closeShow) }
	s.window, s.cancel = w, cancel
	s.mu.Unlock()

	w.Open()
	go s.run(ctx, w)
}

func (s *saver) run(ctx context.Context, w *display.Window) {
	batches, err := s.collect(ctx)
	if err != nil {
		log.Printf("Failed to load photo sources: %v", err)
	}

	settings, err := slideshow.SettingsFrom(s.cfg)
	if err != nil {
		log.Printf("Using %s: %v", settings.Sizing, err)
	}

	screen := s.screenSize(ctx, w)
	stageOpts := []render.Option{render.WithLocator(s.geo)}
	if s.faces != nil {
		stageOpts = append(stageOpts, render.WithFaceDetector(s.faces))
	}
	stage := render.NewStage(ctx, screen, render.URLFetcher{Client: s.client}, w, stageOpts...)
	session, err := slideshow.NewSession(settings, batches, stage, slideshow.SessionOptions{
		Screen: screen,
		Runner: slideshow.RunnerOptions{
			OnTransition: s.broadcast,
			OnNoPhotos:   func() { w.ShowMessage(s.noPhotosText()) },
		},
	})
	if err != nil {
		stage.Close()
		if errors.Is(err, slideshow.ErrNoPhotos) {
			w.ShowMessage(s.noPhotosText())
			return
		}
		log.Printf("Failed to start slideshow: %v", err)
		return
	}

	s.mu.Lock()
	if s.window != w {
		// Closed while loading.
		s.mu.Unlock()
		session.Close()
		stage.Close()
		return
	}
	s.stage, s.session = stage, session
	s.mu.Unlock()

	runner := session.Runner()
	w.SetController(runner)
	if s.api != nil {
		s.api.SetController(runner)
	}
	if s.cfg.GetHotkeysEnabled() {
		hotkey.StartListeners(ctx, runner)
	}
	if err := session.Start(ctx); err != nil {
		log.Printf("Failed to start slideshow: %v", err)
		return
	}
	log.Printf("Slideshow %s started with %d photos on %dx%d", session.ID, session.Pool().Len(), screen.X, screen.Y)

	go s.refreshLoop(ctx, session)
}

// refreshLoop reloads the sources periodically so new photos show up.
func (s *saver) refreshLoop(ctx context.Context, session *slideshow.Session) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-session.Runner().Done():
			return
		case <-ticker.C:
			batches, err := s.collect(ctx)
			if err != nil {
				log.Printf("Refresh skipped: %v", err)
				continue
			}
			if err := session.Refresh(batches); err != nil {
				log.Printf("Refresh kept the current photos: %v", err)
			}
		}
	}
}

func (s *saver) collect(ctx context.Context) ([]provider.Batch, error) {
	fallback, err := s.assets.GetRaw(asset.DefaultSources)
	if err != nil {
		return nil, err
	}
	cfgs, err := config.LoadSources(s.opts.sourcesPath, fallback)
	if err != nil {
		return nil, err
	}
	sources := provider.Build(cfgs, provider.Deps{Client: s.client, Credentials: credentials})
	return provider.Collect(ctx, sources), nil
}

// screenSize waits briefly for the window to be laid out, then asks the OS.
func (s *saver) screenSize(ctx context.Context, w *display.Window) image.Point {
	for range 20 {
		if size, ok := w.PixelSize(); ok {
			return size
		}
		select {
		case <-ctx.Done():
			return defaultScreen
		case <-time.After(100 * time.Millisecond):
		}
	}
	size, err := sysinfo.ScreenSize()
	if err != nil {
		log.Printf("Window size unknown (%v), assuming %dx%d", err, defaultScreen.X, defaultScreen.Y)
		return defaultScreen
	}
	return size
}

func (s *saver) broadcast(t slideshow.Transition) {
	if s.api == nil {
		return
	}
	s.api.BroadcastPhoto(api.PhotoEvent{
		Slot:   t.Slot,
		URL:    t.Photo.URL,
		Label:  t.Photo.Label,
		Source: t.Photo.SourceType,
	})
}

func (s *saver) noPhotosText() string {
	text, err := s.assets.GetText(asset.NoPhotosText)
	if err != nil {
		return "No photos to show."
	}
	return text
}

// closeShow stops the running show. Outside daemon mode the app quits too.
func (s *saver) closeShow() {
	s.mu.Lock()
	w, stage, session, cancel := s.window, s.stage, s.session, s.cancel
	s.window, s.stage, s.session, s.cancel = nil, nil, nil, nil
	s.mu.Unlock()

	if w == nil {
		return
	}
	if s.api != nil {
		s.api.SetController(nil)
	}
	cancel()
	if session != nil {
		session.Close()
	}
	if stage != nil {
		stage.Close()
	}
	w.Close()
	if !s.opts.daemon {
		s.app.Quit()
	}
}

// shutdown runs when the fyne app stops.
func (s *saver) shutdown() {
	s.closeShow()
	if s.api != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.api.Stop(ctx); err != nil {
			log.Printf("[API] shutdown: %v", err)
		}
	}
}

// credentials reads API keys from PHOTOSAVER_<TYPE>_KEY.
func credentials(sourceType string) string {
	return os.Getenv(strings.ToUpper(config.AppName + "_" + sourceType + "_KEY"))
}
