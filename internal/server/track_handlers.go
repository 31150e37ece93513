package server

import (
	"net/http"

	"cratekeeper/internal/collection"
)

type trackListResponse struct {
	Tracks []collection.TrackRecord `json:"tracks"`
}

func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var tracks []collection.TrackRecord
	err = s.manager.View(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		for _, record := range doc.Tracks().All() {
			tracks = append(tracks, *record)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusOK, trackListResponse{Tracks: tracks})
}

type updateTracksRequest struct {
	Updates []collection.TrackUpdate `json:"updates"`
}

func (s *Server) handleUpdateTracks(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req updateTracksRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var result collection.BatchResult
	err = s.manager.Mutate(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		var innerErr error
		result, innerErr = doc.UpdateTracksBatch(req.Updates)
		return innerErr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusOK, result)
}

type mergeRequest struct {
	Operations []collection.MergeOp `json:"operations"`
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req mergeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var result collection.MergeResult
	err = s.manager.Mutate(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		var innerErr error
		result, innerErr = doc.MergeDuplicates(req.Operations)
		return innerErr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusOK, result)
}

func (s *Server) handleCommentCategories(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var categories map[collection.CommentCategory][]string
	err = s.manager.View(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		categories = doc.ClassifyComments()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusOK, categories)
}

func (s *Server) handleMinedTags(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var mined map[string]collection.MinedTag
	err = s.manager.View(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		mined = doc.MineTags()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusOK, mined)
}

type tagRequest struct {
	Playlists []string `json:"playlists"`
	Tag       string   `json:"tag"`
}

func (s *Server) handleTagPreview(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var preview collection.TagPreview
	err = s.manager.View(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		var innerErr error
		preview, innerErr = doc.TagCountPreview(req.Playlists, req.Tag)
		return innerErr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusOK, preview)
}

func (s *Server) handleTagWrite(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var result collection.BatchResult
	err = s.manager.Mutate(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		var innerErr error
		result, innerErr = doc.WriteStyleTag(req.Playlists, req.Tag)
		return innerErr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusOK, result)
}
