package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
	"github.com/secmon-lab/ticketlens/pkg/domain/types"
	"github.com/secmon-lab/ticketlens/pkg/repository/memory"
)

// unitVector returns a full-dimension vector pointing along the given axis.
func unitVector(axis int) model.EmbeddingVector {
	vec := make(model.EmbeddingVector, model.EmbeddingDimension)
	vec[axis] = 1
	return vec
}

// blendVector mixes two axes so cosine distance to unitVector(a) is graded.
func blendVector(a, b int, weight float64) model.EmbeddingVector {
	vec := make(model.EmbeddingVector, model.EmbeddingDimension)
	vec[a] = weight
	vec[b] = 1 - weight
	return vec
}

func TestEmbeddingStore(t *testing.T) {
	ctx := context.Background()

	t.Run("store and get round-trip", func(t *testing.T) {
		repo := memory.New()
		vec := unitVector(0)

		result, err := repo.Embedding().Store(ctx, 42, vec, "Subject: VPN drops", true)
		gt.NoError(t, err).Required()
		gt.Value(t, result.AffectedRows).Equal(int64(1))

		rec, err := repo.Embedding().Get(ctx, 42)
		gt.NoError(t, err).Required()
		gt.Value(t, rec.TicketID).Equal(int64(42))
		gt.Value(t, rec.TextContent).Equal("Subject: VPN drops")
		gt.Array(t, rec.Embedding).Length(model.EmbeddingDimension)
		gt.Bool(t, rec.CreatedAt.IsZero()).False()
	})

	t.Run("upsert replaces content but preserves CreatedAt", func(t *testing.T) {
		repo := memory.New()

		_, err := repo.Embedding().Store(ctx, 1, unitVector(0), "first", true)
		gt.NoError(t, err).Required()
		first, err := repo.Embedding().Get(ctx, 1)
		gt.NoError(t, err).Required()

		_, err = repo.Embedding().Store(ctx, 1, unitVector(1), "second", true)
		gt.NoError(t, err).Required()

		second, err := repo.Embedding().Get(ctx, 1)
		gt.NoError(t, err).Required()
		gt.Value(t, second.TextContent).Equal("second")
		gt.Value(t, second.Embedding[1]).Equal(1.0)
		gt.Value(t, second.CreatedAt).Equal(first.CreatedAt)
	})

	t.Run("non-upsert store fails on existing record", func(t *testing.T) {
		repo := memory.New()

		_, err := repo.Embedding().Store(ctx, 1, unitVector(0), "first", false)
		gt.NoError(t, err).Required()

		_, err = repo.Embedding().Store(ctx, 1, unitVector(1), "second", false)
		gt.Bool(t, errors.Is(err, types.ErrStoreConflict)).True()

		rec, err := repo.Embedding().Get(ctx, 1)
		gt.NoError(t, err).Required()
		gt.Value(t, rec.TextContent).Equal("first")
	})

	t.Run("validation rejects bad input without touching the store", func(t *testing.T) {
		repo := memory.New()

		_, err := repo.Embedding().Store(ctx, 0, unitVector(0), "", true)
		gt.Bool(t, errors.Is(err, types.ErrInvalidInput)).True()

		_, err = repo.Embedding().Store(ctx, 1, make(model.EmbeddingVector, 3), "", true)
		gt.Bool(t, errors.Is(err, types.ErrInvalidInput)).True()

		_, err = repo.Embedding().Get(ctx, 1)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})

	t.Run("get unknown ticket returns not found", func(t *testing.T) {
		repo := memory.New()
		_, err := repo.Embedding().Get(ctx, 999)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})
}

func TestEmbeddingFindSimilar(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) *memory.Memory {
		t.Helper()
		repo := memory.New()
		repo.AddTicket(&model.Ticket{ID: 1, Subject: "VPN drops", Description: "Connection resets"})
		repo.AddTicket(&model.Ticket{ID: 2, Subject: "Login fails", Description: "SSO timeout", Resolution: "Rotated keys"})
		repo.AddTicket(&model.Ticket{ID: 3, Subject: "Billing issue", Description: "Double charge"})

		gt.NoError(t, errStore(repo, ctx, 1, unitVector(0)))
		gt.NoError(t, errStore(repo, ctx, 2, blendVector(0, 1, 0.8)))
		gt.NoError(t, errStore(repo, ctx, 3, unitVector(1)))
		return repo
	}

	t.Run("orders candidates by ascending distance", func(t *testing.T) {
		repo := seed(t)

		candidates, err := repo.Embedding().FindSimilar(ctx, unitVector(0), 10)
		gt.NoError(t, err).Required()
		gt.Array(t, candidates).Length(3)
		gt.Value(t, candidates[0].TicketID).Equal(int64(1))
		gt.Value(t, candidates[1].TicketID).Equal(int64(2))
		gt.Value(t, candidates[2].TicketID).Equal(int64(3))
		gt.Bool(t, candidates[0].Distance <= candidates[1].Distance).True()
		gt.Bool(t, candidates[1].Distance <= candidates[2].Distance).True()
	})

	t.Run("joins ticket fields", func(t *testing.T) {
		repo := seed(t)

		candidates, err := repo.Embedding().FindSimilar(ctx, blendVector(0, 1, 0.8), 1)
		gt.NoError(t, err).Required()
		gt.Array(t, candidates).Length(1)
		gt.Value(t, candidates[0].Subject).Equal("Login fails")
		gt.Value(t, candidates[0].Resolution).Equal("Rotated keys")
	})

	t.Run("truncates to limit", func(t *testing.T) {
		repo := seed(t)

		candidates, err := repo.Embedding().FindSimilar(ctx, unitVector(0), 2)
		gt.NoError(t, err).Required()
		gt.Array(t, candidates).Length(2)
	})

	t.Run("drops orphan embeddings without a ticket", func(t *testing.T) {
		repo := memory.New()
		repo.AddTicket(&model.Ticket{ID: 1, Subject: "Kept"})

		gt.NoError(t, errStore(repo, ctx, 1, unitVector(0)))
		gt.NoError(t, errStore(repo, ctx, 99, unitVector(0)))

		candidates, err := repo.Embedding().FindSimilar(ctx, unitVector(0), 10)
		gt.NoError(t, err).Required()
		gt.Array(t, candidates).Length(1)
		gt.Value(t, candidates[0].TicketID).Equal(int64(1))
	})

	t.Run("non-positive limit yields empty result", func(t *testing.T) {
		repo := seed(t)

		candidates, err := repo.Embedding().FindSimilar(ctx, unitVector(0), 0)
		gt.NoError(t, err).Required()
		gt.Array(t, candidates).Length(0)
	})
}

func errStore(repo *memory.Memory, ctx context.Context, ticketID int64, vec model.EmbeddingVector) error {
	_, err := repo.Embedding().Store(ctx, ticketID, vec, "", true)
	return err
}
