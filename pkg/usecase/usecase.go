package usecase

import (
	"github.com/secmon-lab/ticketlens/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketlens/pkg/service/embedding"
	"github.com/secmon-lab/ticketlens/pkg/service/retrieval"
)

// UseCases wires the embedding pipeline: generation, storage, and
// retrieval. It holds no mutable state beyond its collaborators, so one
// instance serves concurrent requests.
type UseCases struct {
	repo      interfaces.Repository
	generator *embedding.Generator
	retrieval *retrieval.Service

	threshold    float64
	ingestLimit  int
	resolvedOnly bool
}

type Option func(*UseCases)

// WithThreshold sets the similarity threshold for search.
func WithThreshold(threshold float64) Option {
	return func(uc *UseCases) {
		uc.threshold = threshold
	}
}

// WithIngestPageSize sets the page size used when listing tickets during
// bulk reindex.
func WithIngestPageSize(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.ingestLimit = n
		}
	}
}

// WithResolvedOnly restricts bulk reindex to resolved tickets.
func WithResolvedOnly(enabled bool) Option {
	return func(uc *UseCases) {
		uc.resolvedOnly = enabled
	}
}

func New(repo interfaces.Repository, generator *embedding.Generator, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:        repo,
		generator:   generator,
		threshold:   -1,
		ingestLimit: 500,
	}

	for _, opt := range opts {
		opt(uc)
	}

	retrievalOpts := []retrieval.Option{}
	if uc.threshold >= 0 {
		retrievalOpts = append(retrievalOpts, retrieval.WithThreshold(uc.threshold))
	}
	uc.retrieval = retrieval.New(repo, generator, retrievalOpts...)

	return uc
}
