package domain

import (
	"strings"
)

// FilterAll is the sentinel accepted wherever a type or collection filter is parsed.
const FilterAll = "all"

type QueryFilter struct {
	Search       string
	Type         AssetType
	CollectionID CollectionID
}

// Normalize maps the "all" sentinel to the empty value and trims the search text.
func (f QueryFilter) Normalize() QueryFilter {
	f.Search = strings.TrimSpace(f.Search)
	if strings.EqualFold(string(f.Type), FilterAll) {
		f.Type = ""
	}
	if strings.EqualFold(string(f.CollectionID), FilterAll) {
		f.CollectionID = ""
	}
	return f
}

// Key identifies the filter value; two filters with the same key fetch the same listing.
func (f QueryFilter) Key() string {
	n := f.Normalize()
	return n.Search + "\x00" + string(n.Type) + "\x00" + string(n.CollectionID)
}

// Matches reports whether the asset would be part of a listing for this filter.
// The search is a case-insensitive substring match over name, description and tags.
func (f QueryFilter) Matches(asset Asset) bool {
	n := f.Normalize()
	if n.Type != "" && asset.Type != n.Type {
		return false
	}
	if n.CollectionID != "" && asset.CollectionID != n.CollectionID {
		return false
	}
	if n.Search == "" {
		return true
	}

	needle := strings.ToLower(n.Search)
	if strings.Contains(strings.ToLower(asset.Name), needle) ||
		strings.Contains(strings.ToLower(asset.Description), needle) {
		return true
	}
	for _, tag := range asset.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}

	return false
}

type ViewKind string

const (
	ViewAssets      ViewKind = "assets"
	ViewCollections ViewKind = "collections"
	ViewStats       ViewKind = "stats"
)

var AllViews = []ViewKind{ViewAssets, ViewCollections, ViewStats}
