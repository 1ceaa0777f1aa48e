// Package pexels provides photos from the Pexels curated feed or a Pexels
// search query.
package pexels

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dixieflatline76/PhotoSaver/config"
	"github.com/dixieflatline76/PhotoSaver/pkg/fetch"
	"github.com/dixieflatline76/PhotoSaver/pkg/provider"
	"github.com/dixieflatline76/PhotoSaver/util/log"
)

// ErrMissingAPIKey is returned when no Pexels API key is configured.
var ErrMissingAPIKey = errors.New("pexels API key is missing")

// Source implements provider.PhotoSource for Pexels.
type Source struct {
	name   string
	apiURL string
	client *fetch.Client
}

func init() {
	provider.Register(pexelsServiceName, func(cfg config.SourceConfig, deps provider.Deps) (provider.PhotoSource, error) {
		return New(cfg, deps)
	})
}

// New creates a Pexels source. cfg.Query switches from the curated feed to a
// search; cfg.URL overrides the API endpoint. The API key is read from the
// keyring, falling back to deps.Credentials, and sent without a scheme as
// Pexels expects.
func New(cfg config.SourceConfig, deps provider.Deps) (*Source, error) {
	if deps.Client == nil {
		return nil, errors.New("pexels: no fetch client")
	}
	apiURL, err := buildURL(cfg)
	if err != nil {
		return nil, err
	}
	tokens := fetch.NewKeyringTokenSource(config.AppName, pexelsServiceName, func(context.Context) (string, error) {
		if deps.Credentials != nil {
			if key := deps.Credentials(pexelsServiceName); key != "" {
				return key, nil
			}
		}
		return "", ErrMissingAPIKey
	})
	return &Source{
		name:   cfg.Name,
		apiURL: apiURL,
		client: deps.Client.With(fetch.WithTokenSource(tokens), fetch.WithAuthScheme("")),
	}, nil
}

func buildURL(cfg config.SourceConfig) (string, error) {
	base := cfg.URL
	if base == "" {
		base = PexelsAPICuratedURL
		if cfg.Query != "" {
			base = PexelsAPISearchURL
		}
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid Pexels URL: %w", err)
	}
	q := u.Query()
	if cfg.Query != "" {
		q.Set("query", cfg.Query)
	}
	q.Set("per_page", strconv.Itoa(PexelsPerPage))
	q.Set("page", "1")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Type() string {
	return "Pexels"
}

// FetchPhotos fetches one page of photos from the Pexels API.
func (s *Source) FetchPhotos(ctx context.Context) ([]provider.SourcePhoto, error) {
	log.Debugf("Fetching Pexels photos from: %s", s.apiURL)

	var resp PexelsResponse
	err := s.client.GetJSON(ctx, s.apiURL, fetch.Options{RequiresAuth: true, AllowAuthRetry: true}, &resp)
	if err != nil {
		return nil, fmt.Errorf("pexels: %w", err)
	}

	photos := make([]provider.SourcePhoto, 0, len(resp.Photos))
	for _, p := range resp.Photos {
		if sp, ok := mapPexelsPhoto(p); ok {
			photos = append(photos, sp)
		}
	}
	if len(photos) == 0 {
		log.Printf("Pexels query returned 0 photos for URL: %s", s.apiURL)
	}
	return photos, nil
}

func mapPexelsPhoto(p PexelsPhoto) (provider.SourcePhoto, bool) {
	// large2x is already bigger than most screens and much smaller than original
	path := p.Src.Large2x
	if path == "" {
		path = p.Src.Original
	}
	if path == "" {
		return provider.SourcePhoto{}, false
	}
	sp := provider.SourcePhoto{
		URL:    path,
		Author: p.Photographer,
		Ex:     p.URL,
	}
	if p.Height > 0 {
		sp.Asp = float64(p.Width) / float64(p.Height)
	}
	return sp, true
}

// Pexels JSON Structures
type PexelsResponse struct {
	Page     int           `json:"page"`
	PerPage  int           `json:"per_page"`
	Photos   []PexelsPhoto `json:"photos"`
	NextPage string        `json:"next_page"`
}

type PexelsPhoto struct {
	ID           int       `json:"id"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	URL          string    `json:"url"`
	Photographer string    `json:"photographer"`
	Src          PexelsSrc `json:"src"`
}

type PexelsSrc struct {
	Original string `json:"original"`
	Large2x  string `json:"large2x"`
	Large    string `json:"large"`
}
