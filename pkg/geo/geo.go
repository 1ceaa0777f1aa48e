// Package geo turns photo coordinates into short place names using the
// Nominatim reverse geocoding service.
package geo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dixieflatline76/PhotoSaver/pkg/fetch"
	"github.com/dixieflatline76/PhotoSaver/pkg/metrics"
	"github.com/dixieflatline76/PhotoSaver/pkg/provider"
)

const (
	// NominatimReverseURL is the reverse geocoding endpoint.
	NominatimReverseURL = "https://nominatim.openstreetmap.org/reverse"
	// CacheSize is how many place names are remembered.
	CacheSize = 50
)

type reverseResponse struct {
	DisplayName string  `json:"display_name"`
	Address     address `json:"address"`
	Error       string  `json:"error"`
}

type address struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	County  string `json:"county"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Locator resolves coordinates to place names. It is safe for concurrent use.
type Locator struct {
	client   *fetch.Client
	endpoint string
	group    singleflight.Group

	mu    sync.Mutex
	cache map[string]string
	order []string
}

// NewLocator creates a Locator. An empty endpoint selects Nominatim.
func NewLocator(client *fetch.Client, endpoint string) *Locator {
	if endpoint == "" {
		endpoint = NominatimReverseURL
	}
	return &Locator{client: client, endpoint: endpoint, cache: make(map[string]string)}
}

// Locate returns a short place name such as "Lyon, France".
func (l *Locator) Locate(ctx context.Context, p provider.GeoPoint) (string, error) {
	key := cacheKey(p)
	if place, ok := l.cached(key); ok {
		metrics.GeoLookups.WithLabelValues("hit").Inc()
		return place, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		return l.lookup(ctx, p)
	})
	if err != nil {
		metrics.GeoLookups.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.GeoLookups.WithLabelValues("miss").Inc()
	place := v.(string)
	l.store(key, place)
	return place, nil
}

func (l *Locator) lookup(ctx context.Context, p provider.GeoPoint) (string, error) {
	u, err := url.Parse(l.endpoint)
	if err != nil {
		return "", fmt.Errorf("geo: invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(p.Lon, 'f', 6, 64))
	q.Set("zoom", "10")
	u.RawQuery = q.Encode()

	var resp reverseResponse
	if err := l.client.GetJSON(ctx, u.String(), fetch.Options{}, &resp); err != nil {
		return "", fmt.Errorf("geo: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("geo: %s", resp.Error)
	}
	return placeName(resp), nil
}

// placeName keeps the locality and the country.
func placeName(r reverseResponse) string {
	a := r.Address
	var parts []string
	for _, s := range []string{a.City, a.Town, a.Village, a.County, a.State} {
		if s != "" {
			parts = append(parts, s)
			break
		}
	}
	if a.Country != "" {
		parts = append(parts, a.Country)
	}
	if len(parts) == 0 {
		return r.DisplayName
	}
	return strings.Join(parts, ", ")
}

// cacheKey rounds to roughly 100m so nearby photos share a lookup.
func cacheKey(p provider.GeoPoint) string {
	return strconv.FormatFloat(p.Lat, 'f', 3, 64) + "," + strconv.FormatFloat(p.Lon, 'f', 3, 64)
}

func (l *Locator) cached(key string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	place, ok := l.cache[key]
	return place, ok
}

func (l *Locator) store(key, place string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.cache[key]; ok {
		return
	}
	if len(l.order) >= CacheSize {
		oldest := l.order[0]
		l.order = l.order[1:]
		delete(l.cache, oldest)
	}
	l.cache[key] = place
	l.order = append(l.order, key)
}
