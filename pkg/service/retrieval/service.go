package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/secmon-lab/ticketlens/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
	"github.com/secmon-lab/ticketlens/pkg/service/embedding"
	"github.com/secmon-lab/ticketlens/pkg/utils/logging"
)

// Service performs semantic similarity search over stored ticket
// embeddings. Unlike the write path, every internal failure degrades to an
// empty result: a broken search must never take down a caller's request
// pipeline, while silent data loss on writes would be unacceptable.
type Service struct {
	repo      interfaces.Repository
	generator *embedding.Generator
	threshold float64
}

type Option func(*Service)

// WithThreshold overrides the minimum similarity a result must reach.
func WithThreshold(threshold float64) Option {
	return func(s *Service) { s.threshold = threshold }
}

func New(repo interfaces.Repository, generator *embedding.Generator, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		generator: generator,
		threshold: model.DefaultSimilarityThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Threshold returns the effective similarity threshold.
func (s *Service) Threshold() float64 {
	return s.threshold
}

// Search embeds the query and returns up to limit tickets ranked by
// descending similarity, dropping candidates below the threshold. Blank
// queries and non-positive limits short-circuit to an empty result without
// touching the embedding backend. Callers cannot distinguish "no query"
// from "no matches" by the return value.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*model.SimilarTicket, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return []*model.SimilarTicket{}, nil
	}

	queryVec, err := s.generator.Generate(ctx, query)
	if err != nil {
		logging.From(ctx).Warn("query embedding failed, returning empty result",
			"error", err,
			"queryLength", len(query))
		return []*model.SimilarTicket{}, nil
	}

	candidates, err := s.repo.Embedding().FindSimilar(ctx, queryVec, limit)
	if err != nil {
		logging.From(ctx).Warn("similarity query failed, returning empty result",
			"error", err)
		return []*model.SimilarTicket{}, nil
	}

	// The backend returns at most limit candidates by ascending distance.
	// The similarity mapping is monotone, so filtering after that
	// truncation selects the same set as filtering first.
	results := make([]*model.SimilarTicket, 0, len(candidates))
	for _, c := range candidates {
		similarity := model.SimilarityFromDistance(c.Distance)
		if similarity < s.threshold {
			continue
		}
		results = append(results, &model.SimilarTicket{
			TicketID:    c.TicketID,
			Subject:     c.Subject,
			Description: c.Description,
			Resolution:  c.Resolution,
			Similarity:  similarity,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if limit < len(results) {
		results = results[:limit]
	}

	return results, nil
}

// FormatContext renders ranked results into a RAG-ready context block.
// Empty input yields an empty string. Pure, no I/O.
func FormatContext(results []*model.SimilarTicket) string {
	if len(results) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Similar Cases:")
	for i, r := range results {
		fmt.Fprintf(&sb, "\nCase #%d: %s", r.TicketID, r.Subject)
		fmt.Fprintf(&sb, "\nIssue: %s", r.Description)
		fmt.Fprintf(&sb, "\nResolution: %s", r.Resolution)
		if i < len(results)-1 {
			sb.WriteString("\n---")
		}
	}
	return sb.String()
}
