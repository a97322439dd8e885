package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
	"github.com/secmon-lab/ticketlens/pkg/domain/types"
	"github.com/secmon-lab/ticketlens/pkg/utils/errutil"
)

// statusFor maps the pipeline error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrStoreConflict):
		return http.StatusConflict
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type embeddingRequest struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Embedding model.EmbeddingVector `json:"embedding"`
	Dimension int                   `json:"dimension"`
	Text      string                `json:"text"`
}

func (s *Server) handleGenerateEmbedding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req embeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	vec, err := s.uc.GenerateEmbedding(ctx, req.Text)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusFor(err))
		return
	}

	respondJSON(r, w, http.StatusOK, embeddingResponse{
		Embedding: vec,
		Dimension: len(vec),
		Text:      req.Text,
	})
}

// handleGenerateTicketEmbedding accepts a loosely shaped ticket record and
// embeds its composed text. Both bare and ticket_-prefixed field names are
// accepted.
func (s *Server) handleGenerateTicketEmbedding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var record map[string]any
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	text := model.ComposeEmbeddingText(record)
	if text == "" {
		errutil.HandleHTTP(ctx, w,
			goerr.Wrap(types.ErrInvalidInput, "ticket record has no text to embed"),
			http.StatusBadRequest)
		return
	}

	vec, err := s.uc.GenerateEmbedding(ctx, text)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusFor(err))
		return
	}

	respondJSON(r, w, http.StatusOK, embeddingResponse{
		Embedding: vec,
		Dimension: len(vec),
		Text:      text,
	})
}

type storeEmbeddingRequest struct {
	TicketID int64                 `json:"ticket_id"`
	Vector   model.EmbeddingVector `json:"vector"`
	Text     string                `json:"text"`
	Upsert   *bool                 `json:"upsert"`
}

type storeEmbeddingResponse struct {
	Status       string `json:"status"`
	AffectedRows int64  `json:"affected_rows"`
}

func (s *Server) handleStoreEmbedding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req storeEmbeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	upsert := true
	if req.Upsert != nil {
		upsert = *req.Upsert
	}

	result, err := s.uc.StoreEmbedding(ctx, req.TicketID, req.Vector, req.Text, upsert)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusFor(err))
		return
	}

	respondJSON(r, w, http.StatusOK, storeEmbeddingResponse{
		Status:       "success",
		AffectedRows: result.AffectedRows,
	})
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := s.uc.TestConnection(ctx)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusServiceUnavailable)
		return
	}

	respondJSON(r, w, http.StatusOK, result)
}
