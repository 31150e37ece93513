package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cratekeeper/internal/registry"
)

type sourceView struct {
	ID           string     `json:"id"`
	Locator      string     `json:"locator"`
	DisplayName  string     `json:"displayName"`
	RegisteredAt time.Time  `json:"registeredAt"`
	LastLoadedAt *time.Time `json:"lastLoadedAt,omitempty"`
	TrackCount   int        `json:"trackCount"`
}

func toSourceView(source *registry.Source) sourceView {
	return sourceView{
		ID:           source.ID,
		Locator:      source.Locator,
		DisplayName:  source.DisplayName,
		RegisteredAt: source.RegisteredAt,
		LastLoadedAt: source.LastLoadedAt,
		TrackCount:   source.TrackCount,
	}
}

type sourceListResponse struct {
	Sources []sourceView `json:"sources"`
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.registry.List(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	views := make([]sourceView, 0, len(sources))
	for _, source := range sources {
		views = append(views, toSourceView(source))
	}
	writeJSON(s.logger, w, http.StatusOK, sourceListResponse{Sources: views})
}

type registerSourceRequest struct {
	Locator     string `json:"locator"`
	DisplayName string `json:"displayName,omitempty"`
}

func (s *Server) handleRegisterSource(w http.ResponseWriter, r *http.Request) {
	var req registerSourceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	source, err := s.registry.Register(r.Context(), userID(r), req.Locator, req.DisplayName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusCreated, toSourceView(source))
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	id := mux.Vars(r)["id"]

	source, err := s.registry.Get(r.Context(), user, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.registry.Delete(r.Context(), user, id); err != nil {
		s.writeError(w, err)
		return
	}
	// The document may still be cached under the deleted source's locator.
	s.manager.InvalidateSource(user, source.Locator)
	writeJSON(s.logger, w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	s.manager.Invalidate(userID(r))
	writeJSON(s.logger, w, http.StatusOK, map[string]bool{"invalidated": true})
}
