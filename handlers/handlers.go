package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nijaru/yt-summary/gemini"
	"github.com/nijaru/yt-summary/middleware"
	"github.com/nijaru/yt-summary/validation"
	"github.com/sirupsen/logrus"
)

var postOnly = validation.RequestValidationOpts{
	MaxContentLength: maxRequestSize,
	AllowedMethods:   []string{http.MethodPost},
}

// summaryRequest is the inbound body. The video may be named directly or
// through the first part of a completion-style request.
type summaryRequest struct {
	VideoURL string           `json:"videoUrl"`
	Contents []gemini.Content `json:"contents"`
}

// parseSummaryRequest treats anything that does not decode as an empty object.
func parseSummaryRequest(body []byte) summaryRequest {
	var req summaryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return summaryRequest{}
	}
	return req
}

func (r summaryRequest) input() string {
	if r.VideoURL != "" {
		return r.VideoURL
	}
	if len(r.Contents) > 0 && len(r.Contents[0].Parts) > 0 {
		return r.Contents[0].Parts[0].Text
	}
	return ""
}

// handleRelay handles POST / and POST /api/v1/relay
func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	if err := validation.ValidateRequest(r, postOnly); err != nil {
		respondError(w, r, err)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.Relay(r.Context(), parseSummaryRequest(body).input())
	if err != nil {
		respondError(w, r, err)
		return
	}

	middleware.GetLogger(r.Context()).WithFields(logrus.Fields{
		"video_id": res.Material.Info.VideoID,
		"source":   res.Material.Source,
	}).Debug("Relay succeeded")

	respondRaw(w, r, res.StatusCode, res.Body)
}

// handleProxy handles POST /api/v1/proxy
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	if err := validation.ValidateRequest(r, postOnly); err != nil {
		respondError(w, r, err)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.Forward(r.Context(), body)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondRaw(w, r, res.StatusCode, res.Body)
}

// handleDigest handles POST /api/v1/digest
func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	digest, err := s.service.Digest(r.Context(), parseSummaryRequest(body).input())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, digest)
}

// handleGetSummary handles GET /api/v1/summaries/{id}
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.service.GetSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, sum)
}

// handleDeleteSummary handles DELETE /api/v1/summaries/{id}
func (s *Server) handleDeleteSummary(w http.ResponseWriter, r *http.Request) {
	id, err := s.service.DeleteSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]string{"video_id": id})
}
