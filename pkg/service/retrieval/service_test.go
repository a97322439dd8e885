package retrieval_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
	"github.com/secmon-lab/ticketlens/pkg/repository/memory"
	"github.com/secmon-lab/ticketlens/pkg/service/embedding"
	"github.com/secmon-lab/ticketlens/pkg/service/retrieval"
)

type fakeModel struct {
	calls   int
	vectors [][]float64
	err     error
}

func (m *fakeModel) GenerateEmbedding(ctx context.Context, dimension int, texts []string) ([][]float64, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vectors, nil
}

func axisVector(axis int) model.EmbeddingVector {
	vec := make(model.EmbeddingVector, model.EmbeddingDimension)
	vec[axis] = 1
	return vec
}

// distanceVector returns a unit vector whose cosine distance to axisVector(0)
// is the given value in [0, 2].
func distanceVector(distance float64) model.EmbeddingVector {
	cos := 1 - distance
	sin := 1 - cos*cos
	if sin < 0 {
		sin = 0
	}
	vec := make(model.EmbeddingVector, model.EmbeddingDimension)
	vec[0] = cos
	vec[1] = math.Sqrt(sin)
	return vec
}

// seedRepo stores tickets whose similarity to axisVector(0) is the given
// score per ticket ID.
func seedRepo(t *testing.T, scores map[int64]float64) *memory.Memory {
	t.Helper()
	ctx := context.Background()
	repo := memory.New()
	for id, score := range scores {
		repo.AddTicket(&model.Ticket{
			ID:          id,
			Subject:     "subject",
			Description: "description",
			Resolution:  "resolution",
		})
		// similarity = 1 - distance/2, so distance = 2*(1 - similarity)
		_, err := repo.Embedding().Store(ctx, id, distanceVector(2*(1-score)), "", true)
		gt.NoError(t, err).Required()
	}
	return repo
}

func newService(t *testing.T, fake *fakeModel, repo *memory.Memory, opts ...retrieval.Option) *retrieval.Service {
	t.Helper()
	gen, err := embedding.New(fake)
	gt.NoError(t, err).Required()
	return retrieval.New(repo, gen, opts...)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	queryVec := [][]float64{axisVector(0)}

	t.Run("filters below threshold and ranks by descending similarity", func(t *testing.T) {
		repo := seedRepo(t, map[int64]float64{
			1: 0.9,
			2: 0.7,
			3: 0.4,
			4: 0.3,
		})
		svc := newService(t, &fakeModel{vectors: queryVec}, repo)

		results, err := svc.Search(ctx, "payment failed", 10)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(2)
		gt.Value(t, results[0].TicketID).Equal(int64(1))
		gt.Value(t, results[1].TicketID).Equal(int64(2))
		gt.Bool(t, results[0].Similarity >= results[1].Similarity).True()
		for _, r := range results {
			gt.Bool(t, r.Similarity >= svc.Threshold()).True()
			gt.Bool(t, r.Similarity <= 1).True()
		}
	})

	t.Run("respects limit after ranking", func(t *testing.T) {
		repo := seedRepo(t, map[int64]float64{
			1: 0.95,
			2: 0.85,
			3: 0.75,
		})
		svc := newService(t, &fakeModel{vectors: queryVec}, repo)

		results, err := svc.Search(ctx, "query text", 2)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(2)
		gt.Value(t, results[0].TicketID).Equal(int64(1))
		gt.Value(t, results[1].TicketID).Equal(int64(2))
	})

	t.Run("custom threshold applies", func(t *testing.T) {
		repo := seedRepo(t, map[int64]float64{
			1: 0.9,
			2: 0.7,
		})
		svc := newService(t, &fakeModel{vectors: queryVec}, repo, retrieval.WithThreshold(0.8))

		results, err := svc.Search(ctx, "query text", 10)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(1)
		gt.Value(t, results[0].TicketID).Equal(int64(1))
	})

	t.Run("blank query short-circuits without embedding call", func(t *testing.T) {
		fake := &fakeModel{vectors: queryVec}
		svc := newService(t, fake, memory.New())

		results, err := svc.Search(ctx, "   ", 10)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(0)
		gt.Value(t, fake.calls).Equal(0)
	})

	t.Run("non-positive limit short-circuits without embedding call", func(t *testing.T) {
		fake := &fakeModel{vectors: queryVec}
		svc := newService(t, fake, memory.New())

		results, err := svc.Search(ctx, "query text", 0)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(0)
		gt.Value(t, fake.calls).Equal(0)
	})

	t.Run("embedding failure degrades to empty result", func(t *testing.T) {
		svc := newService(t, &fakeModel{err: errors.New("backend down")}, memory.New())

		results, err := svc.Search(ctx, "query text", 10)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(0)
	})

	t.Run("no matches above threshold yields empty result", func(t *testing.T) {
		repo := seedRepo(t, map[int64]float64{1: 0.1})
		svc := newService(t, &fakeModel{vectors: queryVec}, repo)

		results, err := svc.Search(ctx, "query text", 10)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(0)
	})
}

func TestFormatContext(t *testing.T) {
	t.Run("single result", func(t *testing.T) {
		got := retrieval.FormatContext([]*model.SimilarTicket{
			{TicketID: 1, Subject: "S", Description: "D", Resolution: "R", Similarity: 0.9},
		})
		gt.Value(t, got).Equal("Similar Cases:\nCase #1: S\nIssue: D\nResolution: R")
	})

	t.Run("multiple results separated without trailing separator", func(t *testing.T) {
		got := retrieval.FormatContext([]*model.SimilarTicket{
			{TicketID: 1, Subject: "A", Description: "B", Resolution: "C"},
			{TicketID: 2, Subject: "X", Description: "Y", Resolution: "Z"},
		})
		gt.Value(t, got).Equal("Similar Cases:\nCase #1: A\nIssue: B\nResolution: C\n---\nCase #2: X\nIssue: Y\nResolution: Z")
	})

	t.Run("empty input yields empty string", func(t *testing.T) {
		gt.Value(t, retrieval.FormatContext(nil)).Equal("")
		gt.Value(t, retrieval.FormatContext([]*model.SimilarTicket{})).Equal("")
	})
}
