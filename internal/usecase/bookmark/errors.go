// Package bookmark implements the saved-article collection: an ordered,
// URL-unique set of articles persisted as one JSON document in a KVStore.
package bookmark

import "errors"

var (
	// ErrCorruptBookmarks indicates the persisted value is not a JSON array of articles.
	ErrCorruptBookmarks = errors.New("persisted bookmarks are corrupt")

	// ErrStoreUnavailable indicates the persisted value could not be read at all.
	ErrStoreUnavailable = errors.New("bookmark store unavailable")
)
