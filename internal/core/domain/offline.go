package domain

// Tileset is a named collection of offline places.
type Tileset struct {
	Name    string            `json:"name"`
	Version string            `json:"version,omitempty"`
	Records []IndexableRecord `json:"records"`
}

// IndexChangeType describes what happened to an offline tileset.
type IndexChangeType string

// Offline index change kinds.
const (
	IndexChangeAdded   IndexChangeType = "added"
	IndexChangeUpdated IndexChangeType = "updated"
	IndexChangeRemoved IndexChangeType = "removed"
)

// OfflineIndexChangeEvent is reported to index-change listeners after a
// tileset was (re)loaded or dropped.
type OfflineIndexChangeEvent struct {
	Type    IndexChangeType
	Tileset string
	// Records is the tileset size after the change.
	Records int
}

// TileChangeType is the raw change reported by a tile store.
type TileChangeType string

// Tile store change kinds.
const (
	TileChangeWritten TileChangeType = "written"
	TileChangeRemoved TileChangeType = "removed"
)

// TileChange is emitted by a tile store watcher.
type TileChange struct {
	Type    TileChangeType
	Tileset string
}
