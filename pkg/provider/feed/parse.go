package feed

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dixieflatline76/PhotoSaver/pkg/provider"
)

type document struct {
	Photos []provider.SourcePhoto `json:"photos"`
}

// Parse decodes a feed document.
func Parse(data []byte) ([]provider.SourcePhoto, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '[' {
		var photos []provider.SourcePhoto
		if err := json.Unmarshal(data, &photos); err != nil {
			return nil, fmt.Errorf("decode photo list: %w", err)
		}
		return photos, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode photo document: %w", err)
	}
	return doc.Photos, nil
}
