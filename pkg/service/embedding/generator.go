package embedding

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
	"github.com/secmon-lab/ticketlens/pkg/domain/types"
)

// Generator obtains fixed-dimension embedding vectors from an embedding
// model and validates their shape. It performs no retries; retry policy is
// a caller concern.
type Generator struct {
	model interfaces.EmbeddingModel
}

// New creates a Generator backed by the given embedding model.
func New(embeddingModel interfaces.EmbeddingModel) (*Generator, error) {
	if embeddingModel == nil {
		return nil, goerr.New("embedding model is required")
	}
	return &Generator{model: embeddingModel}, nil
}

// Generate embeds the given text. Empty or whitespace-only text fails with
// ErrInvalidInput before the backend is contacted. The backend is invoked
// exactly once; its result must be a vector of exactly
// model.EmbeddingDimension values.
func (g *Generator) Generate(ctx context.Context, text string) (model.EmbeddingVector, error) {
	if strings.TrimSpace(text) == "" {
		return nil, goerr.Wrap(types.ErrInvalidInput, "embedding text is empty or whitespace only")
	}

	embeddings, err := g.model.GenerateEmbedding(ctx, model.EmbeddingDimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(types.ErrEmbeddingBackend, "embedding backend call failed",
			goerr.V("textLength", len(text)),
			goerr.V("cause", err))
	}

	if len(embeddings) == 0 {
		return nil, goerr.Wrap(types.ErrEmbeddingShape, "embedding backend returned no vector",
			goerr.V("length", 0))
	}

	vec := model.EmbeddingVector(embeddings[0])
	if len(vec) != model.EmbeddingDimension {
		return nil, goerr.Wrap(types.ErrEmbeddingShape, "embedding backend returned wrong dimension",
			goerr.V("expected", model.EmbeddingDimension),
			goerr.V("length", len(vec)))
	}

	return vec, nil
}

// GenerateFromTicket composes the canonical embedding text for the ticket
// and embeds it. A ticket with no usable fields fails with ErrInvalidInput.
func (g *Generator) GenerateFromTicket(ctx context.Context, ticket *model.Ticket) (model.EmbeddingVector, error) {
	if ticket == nil {
		return nil, goerr.Wrap(types.ErrInvalidInput, "ticket is required")
	}

	text := ticket.EmbeddingText()
	if text == "" {
		return nil, goerr.Wrap(types.ErrInvalidInput, "ticket has no text to embed",
			goerr.V("ticketID", ticket.ID))
	}

	return g.Generate(ctx, text)
}
