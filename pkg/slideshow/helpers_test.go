package slideshow

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dixieflatline76/PhotoSaver/pkg/provider"
)

// fakeRenderer loads synchronously. URLs listed in failing fail, URLs in
// pending never finish loading.
type fakeRenderer struct {
	mu      sync.Mutex
	slots   map[int]Photo
	failing map[string]bool
	pending map[string]bool
	loads   []int
	renders []int
	selects [][2]int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		slots:   make(map[int]Photo),
		failing: make(map[string]bool),
		pending: make(map[string]bool),
	}
}

func (f *fakeRenderer) Load(slot int, photo Photo, _ Layout) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[slot] = photo
	f.loads = append(f.loads, slot)
}

func (f *fakeRenderer) Loaded(slot int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.slots[slot]
	return ok && !f.failing[p.URL] && !f.pending[p.URL]
}

func (f *fakeRenderer) Failed(slot int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.slots[slot]
	return ok && f.failing[p.URL]
}

func (f *fakeRenderer) Render(slot int, _ Photo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renders = append(f.renders, slot)
}

func (f *fakeRenderer) Select(slot, prev int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selects = append(f.selects, [2]int{slot, prev})
}

func (f *fakeRenderer) fail(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[url] = true
}

func (f *fakeRenderer) photoIn(slot int) Photo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slots[slot]
}

func (f *fakeRenderer) selections() [][2]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][2]int(nil), f.selects...)
}

// manualClock hands out channels that fire only when the test says so.
type manualClock struct {
	mu     sync.Mutex
	timers []chan time.Time
	waits  []time.Duration
	armed  chan struct{}
}

func newManualClock() *manualClock {
	return &manualClock{armed: make(chan struct{}, 100)}
}

func (c *manualClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	c.timers = append(c.timers, ch)
	c.waits = append(c.waits, d)
	c.armed <- struct{}{}
	return ch
}

// fire triggers the newest timer.
func (c *manualClock) fire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timers[len(c.timers)-1] <- time.Now()
}

func (c *manualClock) lastWait() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waits[len(c.waits)-1]
}

func (c *manualClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func sourcePhotos(n int) []provider.SourcePhoto {
	photos := make([]provider.SourcePhoto, n)
	for i := range photos {
		photos[i] = provider.SourcePhoto{
			URL:    fmt.Sprintf("https://photos.example/%d.jpg", i),
			Author: fmt.Sprintf("author %d", i),
			Asp:    1.5,
		}
	}
	return photos
}

func poolOf(n int) *Pool {
	p := NewPool(nil)
	p.AddFromSource(sourcePhotos(n), "Test", Filter{})
	return p
}

func viewsOf(n int, r Renderer) *Views {
	layouts := make([]Layout, n)
	for i := range layouts {
		layouts[i] = letterboxLayout{}
	}
	return NewViews(layouts, r)
}

// fillViews assigns the first photos of pool to every slot, like NewSession.
func fillViews(pool *Pool, views *Views) {
	for i := 0; i < views.Len(); i++ {
		p, _ := pool.NextUsable()
		views.Get(i).SetPhoto(p)
	}
}

var nan = math.NaN()
