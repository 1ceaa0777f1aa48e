package slideshow

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dixieflatline76/PhotoSaver/pkg/metrics"
	"github.com/dixieflatline76/PhotoSaver/util"
	"github.com/dixieflatline76/PhotoSaver/util/log"
)

var runnerLog = log.Component("Runner")

const (
	// DefaultSettleDelay is the wait before the first transition so the
	// initial slots have a chance to load.
	DefaultSettleDelay = 2 * time.Second
	// RetryInterval is the wait after a tick that found nothing ready.
	RetryInterval = 200 * time.Millisecond
)

// ErrRunnerStarted is returned by Start on a Runner that already ran.
var ErrRunnerStarted = errors.New("runner already started")

// Clock abstracts timers so tests can drive the Runner by hand.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RunnerState is the lifecycle state of a Runner.
type RunnerState int32

const (
	Idle RunnerState = iota
	Running
	Paused
	Stopped
)

func (s RunnerState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Transition describes a committed change of the visible slot.
type Transition struct {
	Slot  int
	Prev  int
	Photo Photo
}

type commandKind int

const (
	cmdForward commandKind = iota
	cmdBack
	cmdTogglePause
	cmdCall
)

type command struct {
	kind commandKind
	fn   func()
	done chan struct{}
}

// RunnerOptions tunes a Runner. Zero values select the defaults.
type RunnerOptions struct {
	Clock         Clock
	SettleDelay   time.Duration
	RetryInterval time.Duration

	// OnTransition and OnNoPhotos run on the Runner goroutine.
	OnTransition func(Transition)
	OnNoPhotos   func()
}

// Runner drives the slideshow. All slideshow state is touched only from its
// own goroutine; the exported methods post commands to it.
type Runner struct {
	pool    *Pool
	views   *Views
	finder  *Finder
	history *History

	transition time.Duration
	opts       RunnerOptions

	commands chan command
	done     chan struct{}
	state    atomic.Int32
	started  *util.SafeFlag
	selected *util.SafeCounter

	// owned by the loop goroutine
	timer        <-chan time.Time
	wait         time.Duration
	lastSelected int
	replaceIdx   int
	noPhotos     bool
}

// NewRunner wires a Runner over the given parts. The Finder's no-photos
// callback should call r.NoPhotos; NewSession does this.
func NewRunner(pool *Pool, views *Views, finder *Finder, history *History, transition time.Duration, opts RunnerOptions) *Runner {
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = RetryInterval
	}
	return &Runner{
		pool:         pool,
		views:        views,
		finder:       finder,
		history:      history,
		transition:   transition,
		opts:         opts,
		commands:     make(chan command, 20),
		done:         make(chan struct{}),
		started:      util.NewSafeBool(),
		selected:     util.NewSafeIntWithValue(-1),
		lastSelected: -1,
		replaceIdx:   -1,
	}
}

// Start launches the loop. The first transition happens after the settle
// delay. The loop ends when ctx is cancelled or Stop is called.
func (r *Runner) Start(ctx context.Context) error {
	if !r.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return ErrRunnerStarted
	}
	go r.loop(ctx)
	return nil
}

// Stop ends the loop and waits for it to exit. It is safe to call more than once.
func (r *Runner) Stop() {
	if r.state.CompareAndSwap(int32(Idle), int32(Stopped)) {
		close(r.done)
		return
	}
	r.Do(func() { r.state.Store(int32(Stopped)) })
	<-r.done
}

// Done is closed once the loop has exited.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Forward skips to the next photo.
func (r *Runner) Forward() { r.post(command{kind: cmdForward}) }

// Back returns to the previous photo.
func (r *Runner) Back() { r.post(command{kind: cmdBack}) }

// TogglePause pauses or resumes automatic transitions.
func (r *Runner) TogglePause() { r.post(command{kind: cmdTogglePause}) }

// State returns the lifecycle state.
func (r *Runner) State() RunnerState { return RunnerState(r.state.Load()) }

// Started reports whether the first photo has been shown.
func (r *Runner) Started() bool { return r.started.Value() }

// Selected returns the visible slot, -1 before the first transition.
func (r *Runner) Selected() int { return r.selected.Value() }

// Do runs fn on the loop goroutine and waits for it. Before Start, fn runs
// on the caller's goroutine. After the loop exits, fn is not run.
func (r *Runner) Do(fn func()) {
	switch r.State() {
	case Idle:
		fn()
		return
	case Stopped:
		return
	}
	cmd := command{kind: cmdCall, fn: fn, done: make(chan struct{})}
	select {
	case r.commands <- cmd:
	case <-r.done:
		return
	}
	select {
	case <-cmd.done:
	case <-r.done:
	}
}

func (r *Runner) post(cmd command) {
	select {
	case r.commands <- cmd:
	default:
		runnerLog.Printf("command queue full, dropping command %d", cmd.kind)
	}
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)
	defer r.state.Store(int32(Stopped))

	r.timer = r.opts.Clock.After(r.opts.SettleDelay)
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.timer:
			r.runShow(0, false)
			r.schedule()
		case cmd := <-r.commands:
			r.handle(cmd)
			if r.State() == Stopped {
				return
			}
		}
	}
}

func (r *Runner) handle(cmd command) {
	switch cmd.kind {
	case cmdForward:
		r.forward()
	case cmdBack:
		r.back()
	case cmdTogglePause:
		r.togglePause(0, false)
	case cmdCall:
		cmd.fn()
		close(cmd.done)
	}
}

// schedule arms the single pending timer. A nil channel never fires, so a
// paused runner simply has no timer.
func (r *Runner) schedule() {
	r.timer = r.opts.Clock.After(r.wait)
}

// runShow performs one transition attempt. explicit carries a user or replay
// index; automatic ticks pass hasExplicit false.
func (r *Runner) runShow(explicit int, hasExplicit bool) bool {
	n := r.views.Len()
	if n == 0 {
		r.wait = r.transition
		return false
	}
	selected := r.views.Selected()
	started := r.started.Value()

	curIdx := selected
	if hasExplicit {
		curIdx = explicit
	}
	if !started {
		curIdx = 0
	}
	prevIdx := (curIdx - 1 + n) % n
	nextIdx := 0
	if started {
		nextIdx = ((curIdx+1)%n + n) % n
	}

	last := r.lastSelected
	if n <= 2 {
		// no third slot to rotate through, only the visible one is off limits
		last = -1
	}
	found := r.finder.GetNext(nextIdx, last, selected)
	if found == -1 {
		runnerLog.Debugf("nothing ready at %d (prev %d)", nextIdx, prevIdx)
		r.wait = r.opts.RetryInterval
		if r.noPhotos {
			r.wait = r.transition
		}
		return false
	}
	if !started {
		r.started.Set(true)
	}

	slot := r.views.Get(found)
	slot.Render()
	r.history.Add(hasExplicit, HistoryEntry{
		ViewIdx:      found,
		LastViewIdx:  r.replaceIdx,
		PoolPosition: r.pool.Cursor(),
		PhotoID:      slot.Photo().ID,
	})

	r.lastSelected = selected
	r.views.Select(found)
	r.selected.Set(found)
	metrics.Transitions.Inc()

	if !hasExplicit {
		r.finder.ReplacePhoto(r.replaceIdx, found, r.lastSelected)
		r.replaceIdx = r.lastSelected
	}
	r.wait = r.transition

	if r.opts.OnTransition != nil {
		r.opts.OnTransition(Transition{Slot: found, Prev: r.lastSelected, Photo: slot.Photo()})
	}
	return true
}

// NoPhotos is the Finder callback for an exhausted pool. The loop keeps
// ticking at the transition interval so a refresh can bring it back.
func (r *Runner) NoPhotos() {
	if r.noPhotos {
		return
	}
	r.noPhotos = true
	runnerLog.Println("no usable photos left")
	if r.opts.OnNoPhotos != nil {
		r.opts.OnNoPhotos()
	}
}

func (r *Runner) paused() bool { return r.State() == Paused }

func (r *Runner) togglePause(explicit int, hasExplicit bool) {
	if !r.started.Value() {
		return
	}
	if !r.paused() {
		r.state.Store(int32(Paused))
		r.timer = nil
		// the outgoing slot is at rest now, refill it
		r.finder.ReplacePhoto(r.replaceIdx, r.views.Selected(), -1)
		r.replaceIdx = -1
		return
	}
	r.state.Store(int32(Running))
	r.runShow(explicit, hasExplicit)
	r.schedule()
}

// step runs an explicit transition. A paused runner stays paused after it.
func (r *Runner) step(idx int) {
	if r.paused() {
		r.togglePause(idx, true)
		r.togglePause(0, false)
		return
	}
	r.timer = nil
	r.runShow(idx, true)
	r.schedule()
}

func (r *Runner) forward() {
	if !r.started.Value() {
		return
	}
	if r.paused() {
		r.togglePause(0, false)
		r.togglePause(0, false)
		return
	}
	r.timer = nil
	r.runShow(0, false)
	r.schedule()
}

func (r *Runner) back() {
	if !r.started.Value() {
		return
	}
	s, ok := r.history.Back()
	if !ok {
		runnerLog.Debugf("no earlier photo to return to")
		return
	}
	r.pool.SetCursor(s.Entry.PoolPosition)
	r.replaceIdx = s.Entry.LastViewIdx
	if slot := r.views.Get(s.Entry.ViewIdx); slot != nil {
		if slot.Photo().ID != s.Entry.PhotoID || !r.pool.Owns(slot.Photo()) {
			if photo, ok := r.pool.Get(s.Entry.PhotoID); ok {
				slot.SetPhoto(photo)
			}
		}
		slot.Render()
	}
	// the user asked for this slot, nothing is animating out of the way
	r.lastSelected = -1
	r.step(s.Replay)
}

// refresh is called by Session.Refresh on the loop goroutine after the pool
// was refilled.
func (r *Runner) refresh() {
	r.noPhotos = false
	r.finder.ReplaceAll(r.views.Selected(), r.lastSelected)
	r.history.Clear()
	r.replaceIdx = -1
}
