// Package local provides photos from a directory tree on disk.
package local

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/dixieflatline76/PhotoSaver/config"
	"github.com/dixieflatline76/PhotoSaver/pkg/provider"
	"github.com/dixieflatline76/PhotoSaver/util/log"
)

// MaxPhotos caps how many files one directory contributes.
const MaxPhotos = 2000

var photoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// Source implements provider.PhotoSource for a local directory.
type Source struct {
	name string
	root string
}

func init() {
	provider.Register("local", func(cfg config.SourceConfig, _ provider.Deps) (provider.PhotoSource, error) {
		return New(cfg)
	})
}

// New creates a source for the directory at cfg.Path.
func New(cfg config.SourceConfig) (*Source, error) {
	if cfg.Path == "" {
		return nil, errors.New("local: path is required")
	}
	return &Source{name: cfg.Name, root: cfg.Path}, nil
}

func (s *Source) Name() string { return s.name }

func (s *Source) Type() string { return "Local" }

// FetchPhotos walks the directory and reads the dimensions of every image
// file. Unreadable files are skipped.
func (s *Source) FetchPhotos(ctx context.Context) ([]provider.SourcePhoto, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("local %s: %w", s.name, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("local %s: %s is not a directory", s.name, s.root)
	}

	var photos []provider.SourcePhoto
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debugf("Local %s: skipping %s: %v", s.name, path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !photoExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		asp, err := aspectOf(path)
		if err != nil {
			log.Debugf("Local %s: cannot read %s: %v", s.name, path, err)
			return nil
		}
		photos = append(photos, provider.SourcePhoto{URL: FileURL(path), Asp: asp, Ex: path})
		if len(photos) >= MaxPhotos {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("local %s: %w", s.name, err)
	}
	return photos, nil
}

func aspectOf(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, err
	}
	if cfg.Height == 0 {
		return 0, errors.New("zero height")
	}
	return float64(cfg.Width) / float64(cfg.Height), nil
}

// FileURL turns a local path into a file:// URL.
func FileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		// windows drive letter
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
