package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sitegen/recommender/internal/catalog"
	"github.com/sitegen/recommender/internal/embedder"
	"github.com/sitegen/recommender/internal/ranker"
	"github.com/sitegen/recommender/internal/service"
)

// recommendRequest is the body of POST /recommend-templates
type recommendRequest struct {
	SessionID      string                `json:"sessionId"`
	ProcessedInput service.BusinessFacts `json:"processed_input"`
}

// recommendResponse echoes the session id alongside the ordered
// recommendations
type recommendResponse struct {
	SessionID       string                   `json:"sessionId"`
	Recommendations []service.Recommendation `json:"recommendations"`
}

func (s *HTTPServer) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	recommendations, err := s.svc.Recommend(r.Context(), req.SessionID, req.ProcessedInput)
	if err != nil {
		s.logger.Error("failed to generate recommendations",
			"session_id", req.SessionID,
			"error", err,
		)
		switch {
		case errors.Is(err, service.ErrNotReady):
			writeError(w, http.StatusServiceUnavailable, "service not ready")
		case errors.Is(err, embedder.ErrUnavailable):
			writeError(w, http.StatusInternalServerError, "embedding backend unavailable")
		case errors.Is(err, ranker.ErrMissingEmbedding):
			writeError(w, http.StatusInternalServerError, "candidate embeddings incomplete")
		default:
			writeError(w, http.StatusInternalServerError, "failed to generate recommendations")
		}
		return
	}

	writeJSON(w, http.StatusOK, recommendResponse{
		SessionID:       req.SessionID,
		Recommendations: recommendations,
	})
}

// templateView is the JSON shape of a template in read endpoints; the id is a
// map key in the persisted format, so it is added back explicitly here.
type templateView struct {
	ID string `json:"id"`
	catalog.Template
}

func (s *HTTPServer) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates := s.svc.Catalog().All()
	views := make([]templateView, len(templates))
	for i, tpl := range templates {
		views[i] = templateView{ID: tpl.ID, Template: tpl}
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": views})
}

func (s *HTTPServer) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tpl, err := s.svc.Catalog().Get(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "template not found: "+id)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load template")
		return
	}

	writeJSON(w, http.StatusOK, templateView{ID: tpl.ID, Template: tpl})
}

func (s *HTTPServer) handleTemplatesByIndustry(w http.ResponseWriter, r *http.Request) {
	industry := chi.URLParam(r, "industry")

	templates := s.svc.Catalog().ByIndustry(industry)
	views := make([]templateView, len(templates))
	for i, tpl := range templates {
		views[i] = templateView{ID: tpl.ID, Template: tpl}
	}
	// No match is an empty list, not an error
	writeJSON(w, http.StatusOK, map[string]any{"industry": industry, "templates": views})
}

func (s *HTTPServer) handleRebuildEmbeddings(w http.ResponseWriter, r *http.Request) {
	count, err := s.svc.RebuildEmbeddings(r.Context())
	if err != nil {
		s.logger.Error("failed to rebuild embeddings", "error", err)
		if errors.Is(err, service.ErrNotReady) {
			writeError(w, http.StatusServiceUnavailable, "service not ready")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to rebuild embeddings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "rebuilt", "embeddings": count})
}
