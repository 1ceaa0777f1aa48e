package render

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dixieflatline76/PhotoSaver/pkg/fetch"
)

// Fetcher returns the raw bytes behind a photo URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// URLFetcher reads file:// URLs from disk and everything else through the
// shared fetch client.
type URLFetcher struct {
	Client *fetch.Client
}

func (f URLFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid photo URL: %w", err)
	}
	if u.Scheme == "file" {
		return os.ReadFile(filePath(u))
	}
	return f.Client.Get(ctx, rawURL, fetch.Options{})
}

func filePath(u *url.URL) string {
	p := u.Path
	if runtime.GOOS == "windows" && len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = strings.TrimPrefix(p, "/")
	}
	return filepath.FromSlash(p)
}
