package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dixieflatline76/PhotoSaver/config"
	"github.com/dixieflatline76/PhotoSaver/pkg/fetch"
	"github.com/dixieflatline76/PhotoSaver/util/log"
)

// ErrUnknownSource is returned for a source type nobody registered.
var ErrUnknownSource = errors.New("unknown photo source")

// Deps are the shared collaborators handed to every source factory.
type Deps struct {
	Client *fetch.Client
	// Credentials looks up a secret (API key) by source type. May be nil.
	Credentials func(sourceType string) string
}

// Factory defines the function signature for creating a source.
type Factory func(cfg config.SourceConfig, deps Deps) (PhotoSource, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register registers a new source factory under a lower-case type key.
func Register(sourceType string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[sourceType] = factory
}

// Registered returns the registered type keys, sorted.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// New creates the source described by cfg.
func New(cfg config.SourceConfig, deps Deps) (PhotoSource, error) {
	registryMu.RLock()
	factory, ok := registry[cfg.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Type)
	}
	return factory(cfg, deps)
}

// Build creates every configured source. Entries that fail are logged and skipped.
func Build(cfgs []config.SourceConfig, deps Deps) []PhotoSource {
	sources := make([]PhotoSource, 0, len(cfgs))
	for _, cfg := range cfgs {
		src, err := New(cfg, deps)
		if err != nil {
			log.Printf("Skipping source %s: %v", cfg.Name, err)
			continue
		}
		sources = append(sources, src)
	}
	return sources
}
