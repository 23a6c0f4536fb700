package viewcache

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ProjectMetadata is the small record describing a project's authoritative
// remote state. Hash fingerprints that state at the time the bundle was
// produced and names the versioned bundle directory locally and the bundle
// object remotely. Read-only once fetched.
type ProjectMetadata struct {
	Hash      string    `json:"hash"`
	Name      string    `json:"name,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// decodeMetadataFile reads and decodes the metadata file at path. Any
// failure, a missing file included, surfaces as ErrDeserialize: callers
// must not read metadata before it has actually been downloaded.
func decodeMetadataFile(path string) (*ProjectMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrDeserialize, path, err)
	}
	var meta ProjectMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrDeserialize, path, err)
	}
	if meta.Hash == "" {
		return nil, fmt.Errorf("%w: %s has no hash", ErrDeserialize, path)
	}
	return &meta, nil
}
