package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketlens/pkg/domain/types"
	"google.golang.org/api/iterator"
)

// Firestore is an alternative repository backend. Embeddings are stored as
// Vector32 values and searched with FindNearest; the tickets collection
// mirrors the external ticket store.
type Firestore struct {
	client    *firestore.Client
	ticket    *ticketRepository
	embedding *embeddingRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, mainly for tests sharing
// a database.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.ticket.collectionPrefix = prefix
		f.embedding.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	ticketRepo := newTicketRepository(client)
	embeddingRepo := newEmbeddingRepository(client, ticketRepo)

	f := &Firestore{
		client:    client,
		ticket:    ticketRepo,
		embedding: embeddingRepo,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Ticket() interfaces.TicketRepository {
	return f.ticket
}

func (f *Firestore) Embedding() interfaces.EmbeddingRepository {
	return f.embedding
}

// Ping lists collections once to verify connectivity.
func (f *Firestore) Ping(ctx context.Context) error {
	iter := f.client.Collections(ctx)
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return goerr.Wrap(types.ErrStoreBackend, "firestore connectivity check failed", goerr.V("cause", err))
	}
	return nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
