package viewcache

import "fmt"

// Project identifies one project and carries its two remote key mapping
// strategies: one for assets of the project's current state and one, built
// once the content hash is known, for the hash-versioned bundle.
//
// The remote store is flat; keys are plain strings with no directory
// semantics.
type Project struct {
	id string
}

// NewProject creates a project identity.
func NewProject(id string) (Project, error) {
	if err := validateComponent(id); err != nil {
		return Project{}, fmt.Errorf("viewcache: project id %q: %w", id, err)
	}
	return Project{id: id}, nil
}

// ID returns the project identifier.
func (p Project) ID() string {
	return p.id
}

// Keys returns the mapper for the project's current-state assets
// (metadata, thumbnail).
func (p Project) Keys() KeyMapper {
	return projectKeys{id: p.id}
}

// VersionKeys returns the mapper for assets versioned by the given
// content hash (the bundle archive). The hash comes from the project's
// metadata, so this mapper can only be built once metadata is local.
func (p Project) VersionKeys(hash string) (KeyMapper, error) {
	if err := validateComponent(hash); err != nil {
		return nil, fmt.Errorf("viewcache: hash %q: %w", hash, err)
	}
	return versionKeys{hash: hash}, nil
}

// KeyMapper maps a logical asset name to a remote object key.
type KeyMapper interface {
	Key(logical string) (string, error)
}

type projectKeys struct {
	id string
}

func (k projectKeys) Key(logical string) (string, error) {
	switch logical {
	case NameMetadata, NameThumbnail:
		return "project/" + k.id + "/" + logical, nil
	default:
		return "", fmt.Errorf("viewcache: no project-scoped key for logical name %q", logical)
	}
}

type versionKeys struct {
	hash string
}

func (k versionKeys) Key(logical string) (string, error) {
	switch logical {
	case NameModelView:
		return "content/" + k.hash + "/" + logical, nil
	default:
		return "", fmt.Errorf("viewcache: no hash-scoped key for logical name %q", logical)
	}
}
