package provider

import (
	"context"
	"math"
)

// GeoPoint is where a photo was taken.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SourcePhoto is one photo as reported by a source, before it enters a pool.
type SourcePhoto struct {
	URL    string    `json:"url"`
	Author string    `json:"author"`
	Asp    float64   `json:"asp"` // width / height; NaN or 0 when unknown
	Ex     any       `json:"ex,omitempty"`
	Point  *GeoPoint `json:"point,omitempty"`
}

// HasAspect reports whether the aspect ratio is usable.
func (p SourcePhoto) HasAspect() bool {
	return p.Asp > 0 && !math.IsNaN(p.Asp) && !math.IsInf(p.Asp, 0)
}

// Batch is the result of one source fetch.
type Batch struct {
	SourceType string
	Photos     []SourcePhoto
}

// PhotoSource defines the interface for a remote or local photo collection.
type PhotoSource interface {
	// Name returns the display name configured for this source.
	Name() string
	// Type returns the source type, e.g. "Pexels" or "Local". It ends up in photo labels.
	Type() string
	// FetchPhotos returns the photos currently offered by the source.
	FetchPhotos(ctx context.Context) ([]SourcePhoto, error)
}
