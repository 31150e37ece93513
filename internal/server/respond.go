package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"cratekeeper/internal/services"
)

// maxBodyBytes bounds request bodies; batch payloads stay well under this.
const maxBodyBytes = 8 << 20

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", slog.String("error", err.Error()))
	}
	writeJSON(s.logger, w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return services.Wrap(services.ErrValidation, "api", "decode", "request body is required", nil)
		}
		return services.Wrap(services.ErrValidation, "api", "decode", "malformed request body", err)
	}
	return nil
}

// sourceLocator extracts the mandatory ?source= query parameter addressing
// the backing collection file.
func sourceLocator(r *http.Request) (string, error) {
	locator := r.URL.Query().Get("source")
	if locator == "" {
		return "", services.Wrap(services.ErrValidation, "api", "scope", "source query parameter is required", nil)
	}
	return locator, nil
}
