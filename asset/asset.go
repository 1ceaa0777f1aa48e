package asset

import (
	"embed"

	"github.com/dixieflatline76/PhotoSaver/util/log"
)

//go:embed text/*
var assets embed.FS

// Names of embedded text assets.
const (
	DefaultSources = "default_sources.toml"
	NoPhotosText   = "no_photos.txt"
)

// Manager manages the loading of embedded assets.
type Manager struct{}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{}
}

// GetText loads and returns embedded text asset by name.
func (am *Manager) GetText(name string) (string, error) {
	textBytes, err := am.GetRaw(name)
	if err != nil {
		return "", err
	}
	return string(textBytes), nil
}

// GetRaw loads and returns the raw bytes of an embedded text asset by name.
func (am *Manager) GetRaw(name string) ([]byte, error) {
	data, err := assets.ReadFile("text/" + name)
	if err != nil {
		log.Println("Error loading asset:", err)
		return nil, err
	}
	return data, nil
}
