package server

import (
	"net/http"

	"cratekeeper/internal/collection"
)

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var root *collection.Node
	err = s.manager.View(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		root = doc.Root()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusOK, root)
}

type createNodeRequest struct {
	Parent string `json:"parent"`
	Name   string `json:"name"`
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	s.createNode(w, r, func(doc *collection.Document, req createNodeRequest) (*collection.Node, error) {
		return doc.CreateFolder(req.Parent, req.Name)
	})
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	s.createNode(w, r, func(doc *collection.Document, req createNodeRequest) (*collection.Node, error) {
		return doc.CreatePlaylist(req.Parent, req.Name)
	})
}

func (s *Server) createNode(w http.ResponseWriter, r *http.Request,
	create func(*collection.Document, createNodeRequest) (*collection.Node, error)) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req createNodeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var node *collection.Node
	err = s.manager.Mutate(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		var innerErr error
		node, innerErr = create(doc, req)
		return innerErr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusCreated, node)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req collection.Move
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var node *collection.Node
	err = s.manager.Mutate(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		var innerErr error
		node, innerErr = doc.MoveNode(req.Source, req.Target)
		return innerErr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusOK, node)
}

type moveBatchRequest struct {
	Moves []collection.Move `json:"moves"`
}

type moveBatchResponse struct {
	Moved []*collection.Node `json:"moved"`
}

func (s *Server) handleMoveBatch(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req moveBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var moved []*collection.Node
	err = s.manager.Mutate(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		var innerErr error
		moved, innerErr = doc.MoveBatch(req.Moves)
		return innerErr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusOK, moveBatchResponse{Moved: moved})
}

type duplicateRequest struct {
	Source string `json:"source"`
	Folder string `json:"folder"`
	Name   string `json:"name"`
}

func (s *Server) handleDuplicate(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req duplicateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var node *collection.Node
	err = s.manager.Mutate(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		var innerErr error
		node, innerErr = doc.DuplicatePlaylist(req.Source, req.Folder, req.Name)
		return innerErr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusCreated, node)
}

type renameRequest struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var node *collection.Node
	err = s.manager.Mutate(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		var innerErr error
		node, innerErr = doc.RenameNode(req.Path, req.Name)
		return innerErr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusOK, node)
}

type deleteRequest struct {
	Paths []string `json:"paths"`
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	err = s.manager.Mutate(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		return doc.DeleteNodes(req.Paths)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]bool{"deleted": true})
}

type generatorRequest struct {
	Playlist string `json:"playlist,omitempty"`
	Folder   string `json:"folder"`
	Name     string `json:"name,omitempty"`
}

func (s *Server) handleOrphans(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req generatorRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var node *collection.Node
	err = s.manager.Mutate(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		var innerErr error
		node, innerErr = doc.ComputeOrphans(req.Folder, req.Name)
		return innerErr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusCreated, node)
}

func (s *Server) handleReleaseCompanion(w http.ResponseWriter, r *http.Request) {
	locator, err := sourceLocator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req generatorRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var node *collection.Node
	err = s.manager.Mutate(r.Context(), userID(r), locator, func(doc *collection.Document) error {
		var innerErr error
		node, innerErr = doc.ComputeReleaseCompanion(req.Playlist, req.Folder, req.Name)
		return innerErr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(s.logger, w, http.StatusCreated, node)
}
