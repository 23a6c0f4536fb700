// Package viewcache maintains a local, disk-backed cache of per-project
// artifacts (metadata, thumbnail, and a packaged 3D-view bundle) whose
// authoritative copies live in a remote object store reached through
// short-lived signed URLs.
//
// A [Store] owns the on-disk cache entry for one project and a [Fetcher]
// brings that entry from absent or partial to complete. Bundle content is
// versioned by the content hash embedded in the project metadata, so a
// project whose remote state changed unpacks into a sibling directory
// instead of overwriting the previous version.
//
// # Quick Start
//
// Ensure a project is cached and open its bundle:
//
//	store, err := viewcache.NewStore("/var/cache/views", project)
//	if err != nil {
//	    return err
//	}
//	fetcher, err := viewcache.NewFetcher(provider)
//	if err != nil {
//	    return err
//	}
//	if err := fetcher.Ensure(ctx, store); err != nil {
//	    return err
//	}
//	dir, err := store.CachedBundleDir()
//
// # Cache validity
//
// A cache entry is complete if and only if its marker file exists. The
// marker is written last, after every download and the bundle unpack have
// succeeded, so [Store.IsCached] never reports true for a partial entry.
// A failed or cancelled [Fetcher.Ensure] leaves no marker and is always
// safe to retry: every step is an idempotent overwrite.
package viewcache
