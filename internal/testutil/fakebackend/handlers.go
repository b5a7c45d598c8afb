package fakebackend

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/gorilla/mux"
)

type userJSON struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

type assetJSON struct {
	AssetID      string   `json:"asset_id"`
	Name         string   `json:"name"`
	AssetType    string   `json:"asset_type"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	FileSize     int64    `json:"file_size"`
	MimeType     string   `json:"mime_type"`
	Version      int      `json:"version"`
	CollectionID *string  `json:"collection_id"`
	FileURL      string   `json:"file_url,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

type collectionJSON struct {
	CollectionID string `json:"collection_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Color        string `json:"color"`
	AssetCount   int    `json:"asset_count"`
}

func toUserJSON(p domain.Profile) userJSON {
	return userJSON{UserID: p.ID, Name: p.Name, Email: p.Email, Picture: p.Picture}
}

func toAssetJSON(a domain.Asset) assetJSON {
	out := assetJSON{
		AssetID:     string(a.ID),
		Name:        a.Name,
		AssetType:   string(a.Type),
		Description: a.Description,
		Tags:        a.Tags,
		FileSize:    a.FileSize,
		MimeType:    a.MimeType,
		Version:     a.Version,
		FileURL:     a.FileURL,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if a.CollectionID != "" {
		id := string(a.CollectionID)
		out.CollectionID = &id
	}
	return out
}

func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := decodeJSON(r, &body); err != nil || body.SessionID == "" {
		writeDetail(w, http.StatusBadRequest, "session_id is required")
		return
	}

	s.mu.Lock()
	userID, ok := s.sessionIDs[body.SessionID]
	delete(s.sessionIDs, body.SessionID)
	u := s.users[userID]
	var token string
	if ok && u != nil {
		token = s.issueTokenLocked(userID)
	}
	s.mu.Unlock()

	if token == "" {
		writeDetail(w, http.StatusUnauthorized, "Invalid session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": toUserJSON(u.profile)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	var match *user
	for _, u := range s.users {
		if strings.EqualFold(u.profile.Email, body.Email) && u.password == body.Password {
			match = u
			break
		}
	}
	var token string
	if match != nil {
		token = s.issueTokenLocked(match.profile.ID)
	}
	s.mu.Unlock()

	if match == nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": toUserJSON(match.profile)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ string) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, userID string) {
	s.mu.Lock()
	u := s.users[userID]
	s.mu.Unlock()

	if u == nil {
		writeDetail(w, http.StatusUnauthorized, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, toUserJSON(u.profile))
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request, userID string) {
	q := r.URL.Query()
	filter := domain.QueryFilter{
		Search:       q.Get("search"),
		Type:         domain.AssetType(q.Get("asset_type")),
		CollectionID: domain.CollectionID(q.Get("collection_id")),
	}

	s.mu.Lock()
	assets := s.sortedAssetsLocked(userID)
	s.mu.Unlock()

	out := make([]assetJSON, 0, len(assets))
	for _, a := range assets {
		if filter.Matches(a) {
			out = append(out, toAssetJSON(a))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request, userID string) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeDetail(w, http.StatusBadRequest, "expected multipart form")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	assetType := domain.AssetType(r.FormValue("asset_type"))
	if name == "" {
		writeDetail(w, http.StatusBadRequest, "name is required")
		return
	}
	if !assetType.Valid() {
		writeDetail(w, http.StatusBadRequest, "Invalid asset type")
		return
	}

	asset := domain.Asset{
		Name:         name,
		Type:         assetType,
		Description:  r.FormValue("description"),
		Tags:         domain.ParseTags(r.FormValue("tags")),
		CollectionID: domain.CollectionID(r.FormValue("collection_id")),
	}

	if file, header, err := r.FormFile("file"); err == nil {
		size, copyErr := io.Copy(io.Discard, file)
		_ = file.Close()
		if copyErr != nil {
			writeDetail(w, http.StatusBadRequest, "unreadable file")
			return
		}
		asset.FileSize = size
		asset.MimeType = header.Header.Get("Content-Type")
		if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
			asset.MimeType = byExt
		}
	}

	s.mu.Lock()
	if asset.CollectionID != "" {
		idx := s.collectionIndexLocked(userID, asset.CollectionID)
		if idx < 0 {
			s.mu.Unlock()
			writeDetail(w, http.StatusNotFound, "Collection not found")
			return
		}
		s.collections[idx].collection.AssetCount++
	}
	asset.ID = domain.AssetID("asset_" + shortID())
	asset.Version = 1
	asset.CreatedAt = s.now().UTC()
	if asset.FileSize > 0 {
		asset.FileURL = "/files/" + string(asset.ID)
	}
	s.assets = append(s.assets, storedAsset{owner: userID, asset: asset})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, toAssetJSON(asset))
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request, userID string) {
	id := domain.AssetID(mux.Vars(r)["id"])

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, stored := range s.assets {
		if stored.owner != userID || stored.asset.ID != id {
			continue
		}
		if cid := stored.asset.CollectionID; cid != "" {
			if idx := s.collectionIndexLocked(userID, cid); idx >= 0 {
				s.collections[idx].collection.AssetCount--
			}
		}
		s.assets = append(s.assets[:i], s.assets[i+1:]...)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Asset deleted"})
		return
	}

	writeDetail(w, http.StatusNotFound, "Asset not found")
}

func (s *Server) handleListCollections(w http.ResponseWriter, _ *http.Request, userID string) {
	s.mu.Lock()
	out := make([]collectionJSON, 0, len(s.collections))
	for _, stored := range s.collections {
		if stored.owner != userID {
			continue
		}
		c := stored.collection
		out = append(out, collectionJSON{
			CollectionID: string(c.ID),
			Name:         c.Name,
			Description:  c.Description,
			Color:        c.Color,
			AssetCount:   c.AssetCount,
		})
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}
	if err := decodeJSON(r, &body); err != nil || strings.TrimSpace(body.Name) == "" {
		writeDetail(w, http.StatusBadRequest, "name is required")
		return
	}
	if body.Color == "" {
		body.Color = domain.DefaultCollectionColor
	}

	c := domain.Collection{
		ID:          domain.CollectionID("col_" + shortID()),
		Name:        body.Name,
		Description: body.Description,
		Color:       body.Color,
	}

	s.mu.Lock()
	s.collections = append(s.collections, storedCollection{owner: userID, collection: c})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, collectionJSON{
		CollectionID: string(c.ID),
		Name:         c.Name,
		Description:  c.Description,
		Color:        c.Color,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request, userID string) {
	s.mu.Lock()
	var assets, collections int
	var storage int64
	for _, stored := range s.assets {
		if stored.owner == userID {
			assets++
			storage += stored.asset.FileSize
		}
	}
	for _, stored := range s.collections {
		if stored.owner == userID {
			collections++
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"total_assets":      assets,
		"total_collections": collections,
		"total_storage":     storage,
	})
}

func (s *Server) collectionIndexLocked(userID string, id domain.CollectionID) int {
	for i, stored := range s.collections {
		if stored.owner == userID && stored.collection.ID == id {
			return i
		}
	}
	return -1
}
