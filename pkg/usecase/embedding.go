package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
)

// GenerateEmbedding embeds arbitrary text.
func (uc *UseCases) GenerateEmbedding(ctx context.Context, text string) (model.EmbeddingVector, error) {
	return uc.generator.Generate(ctx, text)
}

// GenerateTicketEmbedding composes the canonical embedding input from a
// ticket and embeds it.
func (uc *UseCases) GenerateTicketEmbedding(ctx context.Context, ticket *model.Ticket) (model.EmbeddingVector, error) {
	return uc.generator.GenerateFromTicket(ctx, ticket)
}

// GenerateTicketEmbeddingByID loads the ticket from the ticket store and
// embeds its composed text.
func (uc *UseCases) GenerateTicketEmbeddingByID(ctx context.Context, ticketID int64) (model.EmbeddingVector, error) {
	ticket, err := uc.repo.Ticket().Get(ctx, ticketID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load ticket for embedding", goerr.V("ticketID", ticketID))
	}
	return uc.generator.GenerateFromTicket(ctx, ticket)
}

// StoreEmbedding persists an embedding record. Validation happens in the
// repository before any backend call; write failures always surface.
func (uc *UseCases) StoreEmbedding(ctx context.Context, ticketID int64, vec model.EmbeddingVector, text string, upsert bool) (*model.StoreResult, error) {
	return uc.repo.Embedding().Store(ctx, ticketID, vec, text, upsert)
}

// EmbedAndStoreTicket is the full write path for a single ticket: compose,
// embed, and upsert.
func (uc *UseCases) EmbedAndStoreTicket(ctx context.Context, ticket *model.Ticket) (*model.StoreResult, error) {
	vec, err := uc.generator.GenerateFromTicket(ctx, ticket)
	if err != nil {
		return nil, err
	}
	return uc.repo.Embedding().Store(ctx, ticket.ID, vec, ticket.EmbeddingText(), true)
}
