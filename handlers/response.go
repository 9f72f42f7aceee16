package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/middleware"
	"github.com/sirupsen/logrus"
)

const maxRequestSize = 1 << 20

// Response wraps the results of the /api/v1 endpoints.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	response := Response{
		Success:   code >= 200 && code < 300,
		Data:      payload,
		RequestID: middleware.GetRequestID(r.Context()),
		Timestamp: time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Failed to encode response")
	}
}

// respondRaw writes an upstream body unchanged.
func respondRaw(w http.ResponseWriter, r *http.Request, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Failed to write response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.StatusCode(err)
	entry := middleware.GetLogger(r.Context()).WithFields(logrus.Fields{
		"error":  err,
		"status": code,
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request error")
	} else {
		entry.Warn("Request error")
	}

	middleware.WriteError(w, err)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestSize))
	if err != nil {
		return nil, errors.InvalidInput("handlers.readBody", err, "Request body too large")
	}
	return body, nil
}
