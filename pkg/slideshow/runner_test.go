package slideshow

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/PhotoSaver/pkg/provider"
)

const testTransition = 10 * time.Second

type harness struct {
	t        *testing.T
	clock    *manualClock
	renderer *fakeRenderer
	session  *Session
	runner   *Runner
}

func newHarness(t *testing.T, photos, maxViews int, opts RunnerOptions) *harness {
	t.Helper()
	h := &harness{t: t, clock: newManualClock(), renderer: newFakeRenderer()}
	opts.Clock = h.clock
	s, err := NewSession(
		Settings{TransitionTime: testTransition, Sizing: Letterbox},
		[]provider.Batch{{SourceType: "Test", Photos: sourcePhotos(photos)}},
		h.renderer,
		SessionOptions{MaxViews: maxViews, Rand: rand.New(rand.NewSource(1)), Runner: opts},
	)
	require.NoError(t, err)
	h.session = s
	h.runner = s.Runner()
	t.Cleanup(s.Close)
	return h
}

func (h *harness) start() {
	require.NoError(h.t, h.session.Start(context.Background()))
	h.waitArmed()
}

func (h *harness) waitArmed() {
	h.t.Helper()
	select {
	case <-h.clock.armed:
	case <-time.After(time.Second):
		h.t.Fatal("runner did not arm a timer")
	}
}

// tick fires the pending timer and waits for the next one to be armed.
func (h *harness) tick() {
	h.t.Helper()
	h.clock.fire()
	h.waitArmed()
}

// sync waits until every command posted so far has been handled.
func (h *harness) sync() {
	h.runner.Do(func() {})
}

func (h *harness) slotPhoto(i int) Photo {
	var p Photo
	h.runner.Do(func() { p = h.session.Views().Get(i).Photo() })
	return p
}

func TestRunnerFirstTickSelectsSlotZero(t *testing.T) {
	h := newHarness(t, 3, 2, RunnerOptions{})
	assert.False(t, h.runner.Started())
	assert.Equal(t, Idle, h.runner.State())

	h.start()
	assert.Equal(t, DefaultSettleDelay, h.clock.lastWait())
	assert.Equal(t, -1, h.runner.Selected())

	h.tick()
	assert.True(t, h.runner.Started())
	assert.Equal(t, 0, h.runner.Selected())
	assert.Equal(t, testTransition, h.clock.lastWait())
	assert.Equal(t, [][2]int{{0, -1}}, h.renderer.selections())
}

func TestRunnerRotatesTwoSlots(t *testing.T) {
	h := newHarness(t, 3, 2, RunnerOptions{})
	h.start()
	for i := 0; i < 5; i++ {
		h.tick()
	}
	assert.Equal(t, [][2]int{{0, -1}, {1, 0}, {0, 1}, {1, 0}, {0, 1}}, h.renderer.selections())
}

func TestRunnerReplacesOutgoingSlot(t *testing.T) {
	h := newHarness(t, 5, 3, RunnerOptions{})
	h.start()
	h.tick()
	h.tick()
	assert.Equal(t, 0, h.slotPhoto(0).ID)

	// third transition refills slot 0, which left the screen two ticks ago
	h.tick()
	assert.Equal(t, 2, h.runner.Selected())
	assert.Equal(t, 3, h.slotPhoto(0).ID)

	h.tick()
	assert.Equal(t, 0, h.runner.Selected())
	assert.Equal(t, 4, h.slotPhoto(1).ID)
}

func TestRunnerRetriesWhenNothingLoaded(t *testing.T) {
	h := newHarness(t, 3, 3, RunnerOptions{})
	h.renderer.mu.Lock()
	for _, p := range sourcePhotos(3) {
		h.renderer.pending[p.URL] = true
	}
	h.renderer.mu.Unlock()

	h.start()
	h.tick()
	assert.False(t, h.runner.Started())
	assert.Equal(t, RetryInterval, h.clock.lastWait())
}

func TestRunnerNoPhotos(t *testing.T) {
	noPhotos := make(chan struct{}, 1)
	h := newHarness(t, 3, 3, RunnerOptions{OnNoPhotos: func() { noPhotos <- struct{}{} }})
	for _, p := range sourcePhotos(3) {
		h.renderer.fail(p.URL)
	}

	h.start()
	h.tick()
	select {
	case <-noPhotos:
	case <-time.After(time.Second):
		t.Fatal("no-photos callback not called")
	}
	assert.Equal(t, testTransition, h.clock.lastWait())

	// keeps looping without calling back again
	h.tick()
	assert.Empty(t, noPhotos)
	assert.Equal(t, Running, h.runner.State())
}

func TestRunnerIgnoresCommandsBeforeFirstPhoto(t *testing.T) {
	h := newHarness(t, 3, 3, RunnerOptions{})
	h.start()
	h.runner.Forward()
	h.runner.Back()
	h.runner.TogglePause()
	h.sync()

	assert.Equal(t, Running, h.runner.State())
	assert.Equal(t, -1, h.runner.Selected())
	assert.Equal(t, 1, h.clock.count())
}

func TestRunnerPauseAndResume(t *testing.T) {
	h := newHarness(t, 5, 3, RunnerOptions{})
	h.start()
	h.tick()
	h.tick()

	h.runner.TogglePause()
	h.sync()
	assert.Equal(t, Paused, h.runner.State())
	// the slot that just left the screen is refilled right away
	assert.Equal(t, 3, h.slotPhoto(0).ID)

	// a stale timer does nothing while paused
	h.clock.fire()
	h.sync()
	assert.Equal(t, 1, h.runner.Selected())

	h.runner.TogglePause()
	h.waitArmed()
	assert.Equal(t, Running, h.runner.State())
	assert.Equal(t, 2, h.runner.Selected())
	assert.Equal(t, testTransition, h.clock.lastWait())
}

func TestRunnerForward(t *testing.T) {
	h := newHarness(t, 5, 3, RunnerOptions{})
	h.start()
	h.tick()

	h.runner.Forward()
	h.waitArmed()
	assert.Equal(t, 1, h.runner.Selected())
	assert.Equal(t, Running, h.runner.State())

	// stepping while paused stays paused
	h.runner.TogglePause()
	h.runner.Forward()
	h.sync()
	assert.Equal(t, 2, h.runner.Selected())
	assert.Equal(t, Paused, h.runner.State())
}

func TestRunnerForwardRotatesPool(t *testing.T) {
	var shown []int
	h := newHarness(t, 10, 3, RunnerOptions{OnTransition: func(tr Transition) { shown = append(shown, tr.Photo.ID) }})
	h.start()
	h.tick()

	for i := 0; i < 8; i++ {
		h.runner.Forward()
		h.waitArmed()
	}

	h.runner.Do(func() {
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, shown)
		assert.Equal(t, 9, h.session.History().Len())
		assert.Equal(t, 8, h.session.History().Index())
	})
	assert.Equal(t, Running, h.runner.State())
	// slot 0 was refilled after every third transition
	assert.Equal(t, 9, h.slotPhoto(0).ID)
}

func TestRunnerBackAfterForward(t *testing.T) {
	var shown []int
	h := newHarness(t, 5, 3, RunnerOptions{OnTransition: func(tr Transition) { shown = append(shown, tr.Photo.ID) }})
	h.start()
	h.tick()
	h.tick()
	h.runner.Forward()
	h.waitArmed()
	h.runner.Forward()
	h.waitArmed()
	require.Equal(t, 0, h.runner.Selected())

	h.runner.Back()
	h.waitArmed()
	assert.Equal(t, 2, h.runner.Selected())
	assert.Equal(t, 2, h.slotPhoto(2).ID)

	h.runner.Do(func() {
		assert.Equal(t, []int{0, 1, 2, 3, 2}, shown)
	})
}

func TestRunnerBack(t *testing.T) {
	var shown []int
	h := newHarness(t, 5, 3, RunnerOptions{OnTransition: func(tr Transition) { shown = append(shown, tr.Photo.ID) }})
	h.start()
	h.tick()
	h.tick()
	h.tick()
	require.Equal(t, 2, h.runner.Selected())

	h.runner.Back()
	h.waitArmed()
	assert.Equal(t, 1, h.runner.Selected())

	var idx int
	h.runner.Do(func() { idx = h.session.History().Index() })
	assert.Equal(t, 1, idx)

	h.runner.Back()
	h.waitArmed()
	assert.Equal(t, 0, h.runner.Selected())

	// nothing before the first photo
	h.runner.Back()
	h.sync()
	assert.Equal(t, 0, h.runner.Selected())

	h.runner.Do(func() {
		assert.Equal(t, []int{0, 1, 2, 1, 0}, shown)
	})
}

func TestRunnerBackNothingToReturnTo(t *testing.T) {
	h := newHarness(t, 5, 3, RunnerOptions{})
	h.start()
	h.tick()

	h.runner.Back()
	h.sync()
	assert.Equal(t, 0, h.runner.Selected())
	assert.Equal(t, 2, h.clock.count())
}

func TestRunnerStop(t *testing.T) {
	h := newHarness(t, 3, 3, RunnerOptions{})
	h.start()
	h.session.Close()

	select {
	case <-h.runner.Done():
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
	assert.Equal(t, Stopped, h.runner.State())
	assert.NotPanics(t, h.session.Close)
	assert.ErrorIs(t, h.session.Start(context.Background()), ErrRunnerStarted)
}

func TestRunnerStopsOnContextCancel(t *testing.T) {
	h := newHarness(t, 3, 3, RunnerOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, h.session.Start(ctx))
	h.waitArmed()
	cancel()

	select {
	case <-h.runner.Done():
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
	assert.Equal(t, Stopped, h.runner.State())
}

func TestStopBeforeStart(t *testing.T) {
	h := newHarness(t, 3, 3, RunnerOptions{})
	h.session.Close()
	assert.Equal(t, Stopped, h.runner.State())
	_, open := <-h.runner.Done()
	assert.False(t, open)
}

func TestSessionRefresh(t *testing.T) {
	h := newHarness(t, 4, 3, RunnerOptions{})
	h.start()
	h.tick()

	fresh := sourcePhotos(6)
	for i := range fresh {
		fresh[i].URL = strings.Replace(fresh[i].URL, "photos.example", "fresh.example", 1)
	}
	require.NoError(t, h.session.Refresh([]provider.Batch{{SourceType: "Fresh", Photos: fresh}}))

	assert.Contains(t, h.slotPhoto(0).URL, "photos.example")
	assert.Contains(t, h.slotPhoto(1).URL, "fresh.example")
	assert.Contains(t, h.slotPhoto(2).URL, "fresh.example")
	h.runner.Do(func() {
		assert.Equal(t, 0, h.session.History().Len())
		assert.Equal(t, 6, h.session.Pool().Len())
	})

	err := h.session.Refresh([]provider.Batch{{SourceType: "Empty"}})
	assert.ErrorIs(t, err, ErrNoPhotos)
	h.runner.Do(func() { assert.Equal(t, 6, h.session.Pool().Len()) })

	h.tick()
	assert.Equal(t, 1, h.runner.Selected())
}
