package server

import (
	"net/http"

	"cratekeeper/internal/collection"
	"cratekeeper/internal/reconcile"
	"cratekeeper/internal/services"
)

type reconcileRequest struct {
	Playlist string `json:"playlist"`
	// Threshold overrides the configured match threshold when positive.
	Threshold float64 `json:"threshold,omitempty"`
	// Tracks is the target list to reconcile against. When empty the
	// configured external library is queried instead.
	Tracks []reconcile.Track `json:"tracks,omitempty"`
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req reconcileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	target := req.Tracks
	if len(target) == 0 {
		if s.external == nil {
			s.writeError(w, services.Wrap(services.ErrValidation, "api", "reconcile",
				"no target tracks supplied and no external library configured", nil))
			return
		}
		target, err = s.external.ListTracks(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
	}

	var source []reconcile.Track
	err = s.manager.View(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		var innerErr error
		source, innerErr = playlistTracks(doc, req.Playlist)
		return innerErr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	threshold := s.threshold
	if req.Threshold > 0 {
		threshold = req.Threshold
	}
	writeJSON(s.logger, w, http.StatusOK, reconcile.CompareTracks(source, target, threshold))
}

// playlistTracks projects a playlist's records into comparison tracks, keyed
// by track key so matches map back onto the collection.
func playlistTracks(doc *collection.Document, playlistPath string) ([]reconcile.Track, error) {
	node, err := doc.Resolve(playlistPath)
	if err != nil {
		return nil, err
	}
	if node.Kind != collection.KindPlaylist {
		return nil, services.Wrap(services.ErrInvalidOperation, "api", "reconcile",
			"reconcile target must be a playlist", nil)
	}

	tracks := make([]reconcile.Track, 0, len(node.TrackKeys))
	for _, key := range node.TrackKeys {
		record, err := doc.Tracks().Get(key)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, reconcile.Track{
			ID:     record.Key,
			Artist: record.Artist,
			Title:  record.Title,
			Album:  record.Album,
		})
	}
	return tracks, nil
}
