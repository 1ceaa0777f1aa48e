// Package gallery scrapes photos from an HTML page. Every <img> that declares
// its width and height becomes a photo; the alt or data-author attribute is
// used as the author.
package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dixieflatline76/PhotoSaver/config"
	"github.com/dixieflatline76/PhotoSaver/pkg/fetch"
	"github.com/dixieflatline76/PhotoSaver/pkg/provider"
	"github.com/dixieflatline76/PhotoSaver/util/log"
)

// Source implements provider.PhotoSource for an HTML gallery page.
type Source struct {
	name   string
	page   *url.URL
	client *fetch.Client
}

func init() {
	provider.Register("gallery", func(cfg config.SourceConfig, deps provider.Deps) (provider.PhotoSource, error) {
		return New(cfg, deps)
	})
}

// New creates a gallery source for the page at cfg.URL.
func New(cfg config.SourceConfig, deps provider.Deps) (*Source, error) {
	if deps.Client == nil {
		return nil, errors.New("gallery: no fetch client")
	}
	page, err := url.Parse(cfg.URL)
	if err != nil || page.Host == "" {
		return nil, fmt.Errorf("gallery: invalid page URL %q", cfg.URL)
	}
	return &Source{name: cfg.Name, page: page, client: deps.Client}, nil
}

func (s *Source) Name() string { return s.name }

func (s *Source) Type() string { return "Gallery" }

// FetchPhotos downloads the page and extracts its photos.
func (s *Source) FetchPhotos(ctx context.Context) ([]provider.SourcePhoto, error) {
	body, err := s.client.Get(ctx, s.page.String(), fetch.Options{})
	if err != nil {
		return nil, fmt.Errorf("gallery %s: %w", s.name, err)
	}
	photos, err := Extract(body, s.page)
	if err != nil {
		return nil, fmt.Errorf("gallery %s: %w", s.name, err)
	}
	log.Debugf("Gallery %s: %d photos on %s", s.name, len(photos), s.page)
	return photos, nil
}

// Extract finds the sized <img> elements of an HTML document. Relative
// sources are resolved against base.
func Extract(data []byte, base *url.URL) ([]provider.SourcePhoto, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var photos []provider.SourcePhoto
	var crawler func(*html.Node)
	crawler = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			if p, ok := imgPhoto(n, base); ok {
				photos = append(photos, p)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			crawler(c)
		}
	}
	crawler(doc)
	return photos, nil
}

func imgPhoto(n *html.Node, base *url.URL) (provider.SourcePhoto, bool) {
	var src, author, alt string
	var width, height float64
	for _, a := range n.Attr {
		switch a.Key {
		case "src":
			src = strings.TrimSpace(a.Val)
		case "width":
			width, _ = strconv.ParseFloat(strings.TrimSuffix(a.Val, "px"), 64)
		case "height":
			height, _ = strconv.ParseFloat(strings.TrimSuffix(a.Val, "px"), 64)
		case "data-author":
			author = a.Val
		case "alt":
			alt = a.Val
		}
	}
	if src == "" || strings.HasPrefix(src, "data:") || width <= 0 || height <= 0 {
		return provider.SourcePhoto{}, false
	}
	ref, err := url.Parse(src)
	if err != nil {
		return provider.SourcePhoto{}, false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if author == "" {
		author = alt
	}
	return provider.SourcePhoto{URL: ref.String(), Author: author, Asp: width / height}, true
}
