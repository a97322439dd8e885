package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
	"github.com/secmon-lab/ticketlens/pkg/domain/types"
)

type embeddingRepository struct {
	mu      sync.RWMutex
	records map[int64]*model.EmbeddingRecord
	tickets *ticketRepository
}

func newEmbeddingRepository(tickets *ticketRepository) *embeddingRepository {
	return &embeddingRepository{
		records: make(map[int64]*model.EmbeddingRecord),
		tickets: tickets,
	}
}

func copyRecord(rec *model.EmbeddingRecord) *model.EmbeddingRecord {
	copied := &model.EmbeddingRecord{
		TicketID:    rec.TicketID,
		TextContent: rec.TextContent,
		CreatedAt:   rec.CreatedAt,
	}
	if rec.Embedding != nil {
		copied.Embedding = make(model.EmbeddingVector, len(rec.Embedding))
		copy(copied.Embedding, rec.Embedding)
	}
	return copied
}

func (r *embeddingRepository) Store(ctx context.Context, ticketID int64, vec model.EmbeddingVector, text string, upsert bool) (*model.StoreResult, error) {
	if err := model.ValidateStoreInput(ticketID, vec); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.records[ticketID]
	if exists && !upsert {
		return nil, goerr.Wrap(types.ErrStoreConflict, "embedding record already exists",
			goerr.V("ticketID", ticketID))
	}

	rec := &model.EmbeddingRecord{
		TicketID:    ticketID,
		Embedding:   vec,
		TextContent: text,
		CreatedAt:   time.Now().UTC(),
	}
	if exists {
		rec.CreatedAt = existing.CreatedAt
	}

	r.records[ticketID] = copyRecord(rec)
	return &model.StoreResult{AffectedRows: 1}, nil
}

func (r *embeddingRepository) Get(ctx context.Context, ticketID int64) (*model.EmbeddingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.records[ticketID]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "embedding record not found",
			goerr.V("ticketID", ticketID))
	}

	return copyRecord(rec), nil
}

func (r *embeddingRepository) FindSimilar(ctx context.Context, embedding model.EmbeddingVector, limit int) ([]*model.SearchCandidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		return []*model.SearchCandidate{}, nil
	}

	candidates := make([]*model.SearchCandidate, 0, len(r.records))
	for _, rec := range r.records {
		if len(rec.Embedding) != len(embedding) {
			continue
		}

		// Join against the ticket store; orphan records are dropped
		ticket, err := r.tickets.Get(ctx, rec.TicketID)
		if err != nil {
			continue
		}

		candidates = append(candidates, &model.SearchCandidate{
			TicketID:    ticket.ID,
			Subject:     ticket.Subject,
			Description: ticket.Description,
			Resolution:  ticket.Resolution,
			Distance:    cosineDistance(embedding, rec.Embedding),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	if limit < len(candidates) {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

// cosineDistance returns 1 - cosine similarity, ranging over [0, 2].
// Zero vectors yield the maximum orthogonal distance of 1.
func cosineDistance(a, b model.EmbeddingVector) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 1
	}

	return 1 - dot/denom
}
