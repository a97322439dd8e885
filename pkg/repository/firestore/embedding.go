package firestore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
	"github.com/secmon-lab/ticketlens/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// embeddingDoc is the Firestore document representation of an embedding
// record. The vector is stored as firestore.Vector32 for FindNearest.
type embeddingDoc struct {
	TicketID    int64              `firestore:"TicketID"`
	Embedding   firestore.Vector32 `firestore:"Embedding"`
	TextContent string             `firestore:"TextContent"`
	CreatedAt   time.Time          `firestore:"CreatedAt"`

	// VectorDistance is populated only on FindNearest results.
	VectorDistance float64 `firestore:"vector_distance,omitempty"`
}

func toEmbeddingDoc(rec *model.EmbeddingRecord) *embeddingDoc {
	return &embeddingDoc{
		TicketID:    rec.TicketID,
		Embedding:   toVector32(rec.Embedding),
		TextContent: rec.TextContent,
		CreatedAt:   rec.CreatedAt,
	}
}

func fromEmbeddingDoc(d *embeddingDoc) *model.EmbeddingRecord {
	return &model.EmbeddingRecord{
		TicketID:    d.TicketID,
		Embedding:   fromVector32(d.Embedding),
		TextContent: d.TextContent,
		CreatedAt:   d.CreatedAt,
	}
}

func toVector32(vec model.EmbeddingVector) firestore.Vector32 {
	v := make(firestore.Vector32, len(vec))
	for i, x := range vec {
		v[i] = float32(x)
	}
	return v
}

func fromVector32(v firestore.Vector32) model.EmbeddingVector {
	vec := make(model.EmbeddingVector, len(v))
	for i, x := range v {
		vec[i] = float64(x)
	}
	return vec
}

type embeddingRepository struct {
	client           *firestore.Client
	tickets          *ticketRepository
	collectionPrefix string
}

func newEmbeddingRepository(client *firestore.Client, tickets *ticketRepository) *embeddingRepository {
	return &embeddingRepository{client: client, tickets: tickets}
}

func (r *embeddingRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "ticket_embeddings")
}

func (r *embeddingRepository) docRef(ticketID int64) *firestore.DocumentRef {
	return r.collection().Doc(strconv.FormatInt(ticketID, 10))
}

func (r *embeddingRepository) Store(ctx context.Context, ticketID int64, vec model.EmbeddingVector, text string, upsert bool) (*model.StoreResult, error) {
	if err := model.ValidateStoreInput(ticketID, vec); err != nil {
		return nil, err
	}

	rec := &model.EmbeddingRecord{
		TicketID:    ticketID,
		Embedding:   vec,
		TextContent: text,
		CreatedAt:   time.Now().UTC(),
	}
	docRef := r.docRef(ticketID)

	if !upsert {
		if _, err := docRef.Create(ctx, toEmbeddingDoc(rec)); err != nil {
			if status.Code(err) == codes.AlreadyExists {
				return nil, goerr.Wrap(types.ErrStoreConflict, "embedding record already exists",
					goerr.V("ticketID", ticketID))
			}
			return nil, goerr.Wrap(types.ErrStoreBackend, "failed to insert embedding record",
				goerr.V("ticketID", ticketID),
				goerr.V("cause", err))
		}
		return &model.StoreResult{AffectedRows: 1}, nil
	}

	// Transactional upsert: preserve CreatedAt of an existing record while
	// replacing vector and text in one atomic commit.
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err == nil {
			var existing embeddingDoc
			if err := snap.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to unmarshal existing embedding record")
			}
			rec.CreatedAt = existing.CreatedAt
		} else if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to read existing embedding record")
		}
		return tx.Set(docRef, toEmbeddingDoc(rec))
	})
	if err != nil {
		return nil, goerr.Wrap(types.ErrStoreBackend, "failed to upsert embedding record",
			goerr.V("ticketID", ticketID),
			goerr.V("cause", err))
	}

	return &model.StoreResult{AffectedRows: 1}, nil
}

func (r *embeddingRepository) Get(ctx context.Context, ticketID int64) (*model.EmbeddingRecord, error) {
	snap, err := r.docRef(ticketID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "embedding record not found",
				goerr.V("ticketID", ticketID))
		}
		return nil, goerr.Wrap(types.ErrStoreBackend, "failed to get embedding record",
			goerr.V("ticketID", ticketID),
			goerr.V("cause", err))
	}

	var d embeddingDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(types.ErrStoreBackend, "failed to unmarshal embedding record",
			goerr.V("ticketID", ticketID),
			goerr.V("cause", err))
	}

	return fromEmbeddingDoc(&d), nil
}

func (r *embeddingRepository) FindSimilar(ctx context.Context, embedding model.EmbeddingVector, limit int) ([]*model.SearchCandidate, error) {
	if limit <= 0 {
		return []*model.SearchCandidate{}, nil
	}

	// Cosine distance keeps the reported values in [0, 2], matching the
	// similarity mapping downstream.
	vq := r.collection().FindNearest("Embedding", toVector32(embedding), limit,
		firestore.DistanceMeasureCosine,
		&firestore.FindNearestOptions{DistanceResultField: "vector_distance"})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	candidates := make([]*model.SearchCandidate, 0, limit)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(types.ErrStoreBackend, "failed to iterate vector search results",
				goerr.V("cause", err))
		}

		var d embeddingDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(types.ErrStoreBackend, "failed to unmarshal vector search result",
				goerr.V("cause", err))
		}

		// Join against the ticket collection; orphan records are dropped
		ticket, err := r.tickets.Get(ctx, d.TicketID)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			return nil, err
		}

		candidates = append(candidates, &model.SearchCandidate{
			TicketID:    ticket.ID,
			Subject:     ticket.Subject,
			Description: ticket.Description,
			Resolution:  ticket.Resolution,
			Distance:    d.VectorDistance,
		})
	}

	return candidates, nil
}
