package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSources = `
[[source]]
type = "pexels"
name = "Pexels curated"
active = true

[[source]]
type = "Feed"
url = "https://example.com/photos.json"
active = true

[[source]]
type = "local"
path = "~/Pictures"
active = false
`

func TestParseSourcesActiveOnly(t *testing.T) {
	got, err := ParseSources([]byte(sampleSources))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "pexels", got[0].Type)
	assert.Equal(t, "Pexels curated", got[0].Name)
	assert.Equal(t, "feed", got[1].Type)
	assert.Equal(t, "feed", got[1].Name, "name defaults to type")
	assert.Equal(t, "https://example.com/photos.json", got[1].URL)
}

func TestParseSourcesMissingType(t *testing.T) {
	_, err := ParseSources([]byte("[[source]]\nname = \"x\"\nactive = true\n"))
	assert.Error(t, err)
}

func TestParseSourcesInvalidTOML(t *testing.T) {
	_, err := ParseSources([]byte("[[source]\n"))
	assert.Error(t, err)
}

func TestLoadSourcesFallback(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	got, err := LoadSources(missing, []byte(sampleSources))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestLoadSourcesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), SourcesFileName)
	doc := "[[source]]\ntype = \"local\"\npath = \"~/Pictures\"\nactive = true\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	got, err := LoadSources(path, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Pictures"), got[0].Path)
}
