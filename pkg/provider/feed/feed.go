// Package feed reads photos from a JSON document listing them with their
// aspect ratio, author and optional location.
package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/dixieflatline76/PhotoSaver/config"
	"github.com/dixieflatline76/PhotoSaver/pkg/fetch"
	"github.com/dixieflatline76/PhotoSaver/pkg/provider"
)

// Source implements provider.PhotoSource for a JSON photo feed.
type Source struct {
	name   string
	url    string
	client *fetch.Client
}

func init() {
	provider.Register("feed", func(cfg config.SourceConfig, deps provider.Deps) (provider.PhotoSource, error) {
		return New(cfg, deps)
	})
}

// New creates a feed source reading cfg.URL.
func New(cfg config.SourceConfig, deps provider.Deps) (*Source, error) {
	if cfg.URL == "" {
		return nil, errors.New("feed: url is required")
	}
	if deps.Client == nil {
		return nil, errors.New("feed: no fetch client")
	}
	return &Source{name: cfg.Name, url: cfg.URL, client: deps.Client}, nil
}

func (s *Source) Name() string { return s.name }

func (s *Source) Type() string { return "Feed" }

// FetchPhotos downloads the feed. The document is either a bare array of
// photos or an object with a "photos" array.
func (s *Source) FetchPhotos(ctx context.Context) ([]provider.SourcePhoto, error) {
	body, err := s.client.Get(ctx, s.url, fetch.Options{})
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", s.name, err)
	}
	photos, err := Parse(body)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", s.name, err)
	}
	return photos, nil
}
