package slideshow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinderFastPath(t *testing.T) {
	r := newFakeRenderer()
	pool := poolOf(5)
	views := viewsOf(3, r)
	fillViews(pool, views)
	f := NewFinder(pool, views, nil)

	assert.Equal(t, 1, f.GetNext(1, -1, 0))
}

func TestFinderSkipsAnimationPair(t *testing.T) {
	r := newFakeRenderer()
	pool := poolOf(5)
	views := viewsOf(4, r)
	fillViews(pool, views)
	f := NewFinder(pool, views, nil)

	for target := 0; target < 4; target++ {
		for last := -1; last < 4; last++ {
			for sel := -1; sel < 4; sel++ {
				got := f.GetNext(target, last, sel)
				assert.NotEqual(t, last, got)
				assert.NotEqual(t, sel, got)
			}
		}
	}
	assert.Equal(t, 3, f.GetNext(1, 1, 2))
}

func TestFinderNothingLoaded(t *testing.T) {
	r := newFakeRenderer()
	pool := poolOf(3)
	views := viewsOf(2, r)
	fillViews(pool, views)
	for i := 0; i < 2; i++ {
		r.pending[views.Get(i).Photo().URL] = true
	}
	f := NewFinder(pool, views, nil)

	assert.Equal(t, -1, f.GetNext(0, -1, -1))
	assert.True(t, pool.HasUsable())
}

func TestFinderReplacesFailedSlot(t *testing.T) {
	r := newFakeRenderer()
	pool := poolOf(4)
	views := viewsOf(3, r)
	fillViews(pool, views)
	r.fail(views.Get(1).Photo().URL)
	f := NewFinder(pool, views, nil)

	// slot 0 is selected, slot 1 failed and gets photo 3 while the scan
	// moves on to slot 2
	got := f.GetNext(1, -1, 0)
	assert.False(t, pool.IsUsable(1))
	assert.Equal(t, 3, views.Get(1).Photo().ID)
	assert.Equal(t, 2, got)
}

func TestFinderExhausted(t *testing.T) {
	r := newFakeRenderer()
	pool := poolOf(3)
	views := viewsOf(2, r)
	fillViews(pool, views)
	calls := 0
	f := NewFinder(pool, views, func() { calls++ })

	pool.MarkBad(0)
	pool.MarkBad(1)
	assert.True(t, pool.HasUsable())
	pool.MarkBad(2)
	assert.False(t, pool.HasUsable())

	assert.Equal(t, -1, f.GetNext(0, -1, -1))
	assert.Equal(t, 1, calls)
}

func TestFinderExhaustedWhileScanning(t *testing.T) {
	r := newFakeRenderer()
	pool := poolOf(2)
	views := viewsOf(2, r)
	fillViews(pool, views)
	r.fail(views.Get(0).Photo().URL)
	r.fail(views.Get(1).Photo().URL)
	calls := 0
	f := NewFinder(pool, views, func() { calls++ })

	assert.Equal(t, -1, f.GetNext(0, -1, -1))
	assert.False(t, pool.HasUsable())
	assert.Equal(t, 1, calls)
}

func TestReplacePhoto(t *testing.T) {
	r := newFakeRenderer()
	pool := poolOf(5)
	views := viewsOf(3, r)
	fillViews(pool, views)
	f := NewFinder(pool, views, nil)

	f.ReplacePhoto(2, 0, 1)
	assert.Equal(t, 3, views.Get(2).Photo().ID)

	f.ReplacePhoto(0, 0, 1)
	f.ReplacePhoto(1, 0, 1)
	f.ReplacePhoto(-1, 0, 1)
	assert.Equal(t, 0, views.Get(0).Photo().ID)
	assert.Equal(t, 1, views.Get(1).Photo().ID)
	assert.Equal(t, 4, pool.Cursor())
}

func TestReplacePhotoSmallPool(t *testing.T) {
	r := newFakeRenderer()
	pool := poolOf(3)
	views := viewsOf(3, r)
	fillViews(pool, views)
	f := NewFinder(pool, views, nil)

	f.ReplacePhoto(2, 0, 1)
	assert.Equal(t, 2, views.Get(2).Photo().ID)
	assert.Equal(t, 3, len(r.loads))
}

func TestReplaceAllKeepsPair(t *testing.T) {
	r := newFakeRenderer()
	pool := poolOf(8)
	views := viewsOf(4, r)
	fillViews(pool, views)
	f := NewFinder(pool, views, nil)

	f.ReplaceAll(1, 2)
	assert.Equal(t, 4, views.Get(0).Photo().ID)
	assert.Equal(t, 1, views.Get(1).Photo().ID)
	assert.Equal(t, 2, views.Get(2).Photo().ID)
	assert.Equal(t, 5, views.Get(3).Photo().ID)
}
