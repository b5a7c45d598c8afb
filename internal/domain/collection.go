package domain

type CollectionID string

const DefaultCollectionColor = "#3B82F6"

// CollectionPalette holds the colours offered when creating a collection.
var CollectionPalette = []string{"#3B82F6", "#22C55E", "#F59E0B", "#EF4444", "#8B5CF6", "#EC4899"}

type Collection struct {
	ID          CollectionID
	Name        string
	Description string
	Color       string
	// AssetCount is computed by the server and only correct right after a refresh.
	AssetCount int
}

type Stats struct {
	TotalAssets       int
	TotalCollections  int
	TotalStorageBytes int64
}
