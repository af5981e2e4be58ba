package web

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mmcdole/multiview/internal/domain"
)

type addStreamRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type updateStreamRequest struct {
	Title string `json:"title"`
}

type bulkRequest struct {
	Text string `json:"text"`
}

type livePlaylistRequest struct {
	ChannelID  string `json:"channel_id"`
	DeviceName string `json:"device_name"`
	Title      string `json:"title"`
}

type setKeyRequest struct {
	APIKey string `json:"api_key"`
}

type settingsRequest struct {
	AutoRefreshEnabled *bool `json:"auto_refresh_enabled"`
}

type keyResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

func (s *Server) handleListStreams(w http.ResponseWriter, r *http.Request) {
	reg, err := s.streams.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if reg.Streams == nil {
		reg.Streams = []domain.StreamEntry{}
	}
	writeJSON(w, http.StatusOK, reg)
}

func (s *Server) handleAddStream(w http.ResponseWriter, r *http.Request) {
	var req addStreamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	entry, err := s.streams.Add(r.Context(), req.URL, req.Title)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// streamID returns the decoded {id} path segment. chi matches on the raw
// path, so "playlist%3APL1" arrives still escaped.
func streamID(r *http.Request) (string, error) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		return "", fmt.Errorf("%w: invalid stream id: %v", errBadRequest, err)
	}
	return id, nil
}

func (s *Server) handleUpdateStream(w http.ResponseWriter, r *http.Request) {
	var req updateStreamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := streamID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entry, err := s.streams.Update(r.Context(), id, req.Title)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteStream(w http.ResponseWriter, r *http.Request) {
	id, err := streamID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.streams.Remove(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleBulkAdd(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.streams.BulkAdd(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	text, err := s.streams.ExportCSV(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="streams.csv"`)
	_, _ = io.WriteString(w, text)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	res, err := s.streams.ImportCSV(r.Context(), string(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLivePlaylist(w http.ResponseWriter, r *http.Request) {
	var req livePlaylistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	entry, err := s.streams.AddChannelPlaylist(r.Context(), req.ChannelID, req.DeviceName, req.Title)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleEmbeddable(w http.ResponseWriter, r *http.Request) {
	id, err := streamID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.streams.CheckEmbeddable(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	report, err := s.streams.Refresh(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.streams.Status(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleSetKey installs a runtime key and reports whether the API accepts it.
// An invalid key stays installed so the caller can see the failing status.
func (s *Server) handleSetKey(w http.ResponseWriter, r *http.Request) {
	if s.keys == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "runtime key changes are disabled"})
		return
	}
	var req setKeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		s.writeError(w, r, fmt.Errorf("%w: api_key is required", errBadRequest))
		return
	}

	s.keys.SetKey(key)
	valid, msg := s.streams.ValidateKey(r.Context())
	s.logger.Info("runtime API key set", "valid", valid)
	writeJSON(w, http.StatusOK, keyResponse{Valid: valid, Message: msg})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.AutoRefreshEnabled == nil {
		s.writeError(w, r, fmt.Errorf("%w: auto_refresh_enabled is required", errBadRequest))
		return
	}
	st, err := s.streams.SetAutoRefresh(r.Context(), *req.AutoRefreshEnabled)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
