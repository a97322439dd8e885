package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/types"
)

// EmbeddingDimension is the dimension of the embedding vector.
// text-embedding-004 produces 768 dimensions.
const EmbeddingDimension = 768

// EmbeddingVector is an ordered sequence of float64 values. A valid vector
// has exactly EmbeddingDimension elements; it is never truncated or padded.
type EmbeddingVector []float64

// EmbeddingRecord is a persisted embedding keyed by ticket ID. CreatedAt is
// set on first insert only and survives upsert replacement.
type EmbeddingRecord struct {
	TicketID    int64
	Embedding   EmbeddingVector
	TextContent string
	CreatedAt   time.Time
}

// StoreResult reports the outcome of a store operation.
type StoreResult struct {
	// AffectedRows is the row count reported by the backend, or -1 when the
	// backend does not expose one.
	AffectedRows int64
}

// ValidateStoreInput checks store preconditions before any backend call.
func ValidateStoreInput(ticketID int64, vec EmbeddingVector) error {
	if ticketID <= 0 {
		return goerr.Wrap(types.ErrInvalidInput, "ticket ID must be a positive integer",
			goerr.V("ticketID", ticketID))
	}
	if len(vec) != EmbeddingDimension {
		return goerr.Wrap(types.ErrInvalidInput, "embedding vector has wrong dimension",
			goerr.V("expected", EmbeddingDimension),
			goerr.V("actual", len(vec)))
	}
	return nil
}
