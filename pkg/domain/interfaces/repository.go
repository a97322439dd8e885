package interfaces

import (
	"context"

	"github.com/secmon-lab/ticketlens/pkg/domain/model"
)

// Repository defines the interface for data persistence
type Repository interface {
	Ticket() TicketRepository
	Embedding() EmbeddingRepository

	// Ping verifies connectivity with the backing store
	Ping(ctx context.Context) error

	Close() error
}

// TicketRepository supplies raw ticket rows from the external ticket store.
// The embedding pipeline treats tickets as read-only input.
type TicketRepository interface {
	// Get retrieves a ticket by ID
	Get(ctx context.Context, ticketID int64) (*model.Ticket, error)

	// List retrieves tickets in stable order for bulk processing.
	// limit <= 0 means no limit.
	List(ctx context.Context, limit, offset int) ([]*model.Ticket, error)
}

// EmbeddingRepository persists embedding records keyed by ticket ID.
type EmbeddingRepository interface {
	// Store writes an embedding record. With upsert the write is a single
	// atomic conditional operation: replace vector and text in place when a
	// record exists (CreatedAt untouched), insert with the current time
	// otherwise. Without upsert an existing record yields ErrStoreConflict.
	Store(ctx context.Context, ticketID int64, vec model.EmbeddingVector, text string, upsert bool) (*model.StoreResult, error)

	// Get retrieves the embedding record for a ticket ID
	Get(ctx context.Context, ticketID int64) (*model.EmbeddingRecord, error)

	// FindSimilar joins stored embeddings against their tickets and returns
	// up to limit candidates ordered by ascending cosine distance to the
	// query embedding. Records without a matching ticket are dropped.
	FindSimilar(ctx context.Context, embedding model.EmbeddingVector, limit int) ([]*model.SearchCandidate, error)
}
