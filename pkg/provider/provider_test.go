package provider

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/PhotoSaver/config"
)

// MockSource is a mock implementation of PhotoSource.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSource) Type() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSource) FetchPhotos(ctx context.Context) ([]SourcePhoto, error) {
	args := m.Called(ctx)
	photos, _ := args.Get(0).([]SourcePhoto)
	return photos, args.Error(1)
}

func newMockSource(name string, photos []SourcePhoto, err error) *MockSource {
	m := new(MockSource)
	m.On("Name").Return(name)
	m.On("Type").Return(name)
	m.On("FetchPhotos", mock.Anything).Return(photos, err)
	return m
}

func TestHasAspect(t *testing.T) {
	assert.True(t, SourcePhoto{Asp: 1.5}.HasAspect())
	assert.False(t, SourcePhoto{}.HasAspect())
	assert.False(t, SourcePhoto{Asp: math.NaN()}.HasAspect())
	assert.False(t, SourcePhoto{Asp: math.Inf(1)}.HasAspect())
}

func TestRegistry(t *testing.T) {
	src := newMockSource("Fake", nil, nil)
	var gotCfg config.SourceConfig
	Register("test-fake", func(cfg config.SourceConfig, _ Deps) (PhotoSource, error) {
		gotCfg = cfg
		return src, nil
	})
	Register("test-broken", func(config.SourceConfig, Deps) (PhotoSource, error) {
		return nil, errors.New("missing api key")
	})

	assert.Subset(t, Registered(), []string{"test-broken", "test-fake"})

	got, err := New(config.SourceConfig{Type: "test-fake", Name: "mine"}, Deps{})
	require.NoError(t, err)
	assert.Same(t, src, got)
	assert.Equal(t, "mine", gotCfg.Name)

	_, err = New(config.SourceConfig{Type: "nope"}, Deps{})
	assert.ErrorIs(t, err, ErrUnknownSource)

	built := Build([]config.SourceConfig{
		{Type: "test-broken", Name: "broken"},
		{Type: "test-fake", Name: "fake"},
		{Type: "nope", Name: "nope"},
	}, Deps{})
	require.Len(t, built, 1)
	assert.Same(t, src, built[0])
}

func TestCollect(t *testing.T) {
	a := newMockSource("A", []SourcePhoto{{URL: "a1", Asp: 1}, {URL: "a2", Asp: 1}}, nil)
	broken := newMockSource("Broken", nil, errors.New("boom"))
	empty := newMockSource("Empty", []SourcePhoto{}, nil)
	b := newMockSource("B", []SourcePhoto{{URL: "b1", Asp: 1}}, nil)

	batches := Collect(context.Background(), []PhotoSource{a, broken, empty, b})

	require.Len(t, batches, 2)
	assert.Equal(t, "A", batches[0].SourceType)
	assert.Len(t, batches[0].Photos, 2)
	assert.Equal(t, "B", batches[1].SourceType)
	for _, m := range []*MockSource{a, broken, empty, b} {
		m.AssertCalled(t, "FetchPhotos", mock.Anything)
	}
}

func TestCollectNoSources(t *testing.T) {
	assert.Empty(t, Collect(context.Background(), nil))
}
