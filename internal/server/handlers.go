package server

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/hyperjump/memefeed/internal/feedback"
	"github.com/hyperjump/memefeed/internal/models"
	"github.com/hyperjump/memefeed/internal/recommend"
	"github.com/hyperjump/memefeed/internal/storage"
	"github.com/hyperjump/memefeed/internal/vector"
	"go.uber.org/zap"
)

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	k, err := s.countParam(r, "k", s.config.Recommend.DefaultCount)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs := s.engine.Recommend(k)
	s.respondJSON(w, http.StatusOK, models.RecommendResponse{Recommendations: recs, Count: len(recs)})
}

// countParam reads a non-negative integer query parameter, falling back to def when
// absent and clamping to recommend.max_count.
func (s *Server) countParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	if maxCount := s.config.Recommend.MaxCount; maxCount > 0 && n > maxCount {
		n = maxCount
	}
	return n, nil
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	action, err := feedback.ParseAction(req.Action)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Index == nil {
		s.respondError(w, http.StatusBadRequest, "index is required")
		return
	}
	res, err := s.engine.RecordFeedback(action, *req.Index)
	if err != nil {
		var ie *vector.IndexError
		if errors.As(err, &ie) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("feedback failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.engine.Status()
	st.DataSource = s.config.Data.Source
	if n, err := storage.DiskUsageBytes(s.config.Data.Paths()...); err == nil {
		st.DiskUsageBytes = &n
	} else {
		s.logger.Debug("status: disk usage unavailable", zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, st)
}

func (s *Server) handlePreference(w http.ResponseWriter, r *http.Request) {
	vec, signal := s.engine.Preference()
	s.respondJSON(w, http.StatusOK, models.PreferenceResponse{
		Dimension: len(vec),
		Vector:    vec,
		Signal:    signal,
	})
}

func (s *Server) itemParam(w http.ResponseWriter, r *http.Request) (models.Item, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "index must be an integer")
		return models.Item{}, false
	}
	item, err := s.engine.Item(index)
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return models.Item{}, false
	}
	return item, true
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, ok := s.itemParam(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	item, ok := s.itemParam(w, r)
	if !ok {
		return
	}
	path := s.config.Data.ResolveImage(item.Path)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		s.logger.Debug("image not found", zap.Int("index", item.Index), zap.String("path", path))
		s.respondError(w, http.StatusNotFound, "image not found")
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, err := s.countParam(r, "limit", s.config.Search.DefaultLimit)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request", zap.String("query", q), zap.Int("limit", limit))
	hits, err := s.engine.Search(r.Context(), q, limit)
	if err != nil {
		if errors.Is(err, recommend.ErrSearchDisabled) {
			s.respondError(w, http.StatusNotImplemented, err.Error())
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.SearchResponse{Query: q, Hits: hits, Total: len(hits)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
