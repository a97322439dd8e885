package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
	"github.com/secmon-lab/ticketlens/pkg/domain/types"
	"github.com/secmon-lab/ticketlens/pkg/utils/async"
	"github.com/secmon-lab/ticketlens/pkg/utils/errutil"
	"github.com/secmon-lab/ticketlens/pkg/utils/logging"
)

type searchRequest struct {
	Query         string  `json:"query"`
	Limit         int     `json:"limit"`
	MinSimilarity float64 `json:"min_similarity"`
}

type searchResponse struct {
	Query      string                 `json:"query"`
	Results    []*model.SimilarTicket `json:"results"`
	TotalFound int                    `json:"total_found"`
}

// validateSearch enforces the request schema: minimum query length,
// default and maximum limit, and a similarity override within [0, 1].
func (s *Server) validateSearch(req *searchRequest) error {
	if len(strings.TrimSpace(req.Query)) < s.minQueryLength {
		return goerr.Wrap(types.ErrInvalidInput, "query is too short",
			goerr.V("minLength", s.minQueryLength))
	}
	if req.Limit == 0 {
		req.Limit = s.defaultLimit
	}
	if req.Limit < 0 || req.Limit > s.maxLimit {
		return goerr.Wrap(types.ErrInvalidInput, "limit is out of range",
			goerr.V("limit", req.Limit),
			goerr.V("max", s.maxLimit))
	}
	if req.MinSimilarity < 0 || req.MinSimilarity > 1 {
		return goerr.Wrap(types.ErrInvalidInput, "min_similarity must be within [0, 1]",
			goerr.V("minSimilarity", req.MinSimilarity))
	}
	return nil
}

func (s *Server) search(r *http.Request, req *searchRequest) ([]*model.SimilarTicket, error) {
	results, err := s.uc.SearchSimilarTickets(r.Context(), req.Query, req.Limit)
	if err != nil {
		return nil, err
	}

	// The pipeline threshold already applies; the request can only narrow
	// further.
	if req.MinSimilarity > 0 {
		filtered := results[:0]
		for _, res := range results {
			if res.Similarity >= req.MinSimilarity {
				filtered = append(filtered, res)
			}
		}
		results = filtered
	}

	return results, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}
	if err := s.validateSearch(&req); err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	results, err := s.search(r, &req)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusFor(err))
		return
	}

	respondJSON(r, w, http.StatusOK, searchResponse{
		Query:      req.Query,
		Results:    results,
		TotalFound: len(results),
	})
}

type contextResponse struct {
	Query   string `json:"query"`
	Context string `json:"context"`
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}
	if err := s.validateSearch(&req); err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	results, err := s.search(r, &req)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusFor(err))
		return
	}

	respondJSON(r, w, http.StatusOK, contextResponse{
		Query:   req.Query,
		Context: s.uc.FormatRAGContext(results),
	})
}

type reindexRequest struct {
	Workers int `json:"workers"`
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reindexRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		summary, err := s.uc.ReindexAll(ctx, req.Workers)
		if err != nil {
			return err
		}
		logging.From(ctx).Info("reindex completed",
			"processed", summary.Processed,
			"stored", summary.Stored,
			"skipped", summary.Skipped,
			"failed", summary.Failed,
		)
		return nil
	})

	respondJSON(r, w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
