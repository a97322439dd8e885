package usecase

import (
	"context"

	"github.com/secmon-lab/ticketlens/pkg/domain/model"
	"github.com/secmon-lab/ticketlens/pkg/service/retrieval"
)

// SearchSimilarTickets returns tickets ranked by similarity to the query.
// Blank queries and non-positive limits yield an empty slice; internal
// failures degrade to an empty slice as well and are only logged.
func (uc *UseCases) SearchSimilarTickets(ctx context.Context, query string, limit int) ([]*model.SimilarTicket, error) {
	return uc.retrieval.Search(ctx, query, limit)
}

// FormatRAGContext renders search results into a context block for
// retrieval-augmented generation.
func (uc *UseCases) FormatRAGContext(results []*model.SimilarTicket) string {
	return retrieval.FormatContext(results)
}

// SimilarityThreshold reports the effective search threshold.
func (uc *UseCases) SimilarityThreshold() float64 {
	return uc.retrieval.Threshold()
}
