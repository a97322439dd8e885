package firestore

import (
	"context"
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

type ticketDoc struct {
	TicketID    int64     `firestore:"TicketID"`
	Subject     string    `firestore:"Subject"`
	Description string    `firestore:"Description"`
	Resolution  string    `firestore:"Resolution"`
	Status      string    `firestore:"Status"`
	CreatedAt   time.Time `firestore:"CreatedAt"`
}

func fromTicketDoc(d *ticketDoc) *model.Ticket {
	return &model.Ticket{
		ID:          d.TicketID,
		Subject:     d.Subject,
		Description: d.Description,
		Resolution:  d.Resolution,
		Status:      types.TicketStatus(d.Status),
		CreatedAt:   d.CreatedAt,
	}
}

type ticketRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTicketRepository(client *firestore.Client) *ticketRepository {
	return &ticketRepository{client: client}
}

func (r *ticketRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "tickets")
}

func (r *ticketRepository) Get(ctx context.Context, ticketID int64) (*model.Ticket, error) {
	snap, err := r.collection().Doc(strconv.FormatInt(ticketID, 10)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "ticket not found", goerr.V("ticketID", ticketID))
		}
		return nil, goerr.Wrap(types.ErrStoreBackend, "failed to get ticket",
			goerr.V("ticketID", ticketID),
			goerr.V("cause", err))
	}

	var d ticketDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(types.ErrStoreBackend, "failed to unmarshal ticket",
			goerr.V("ticketID", ticketID),
			goerr.V("cause", err))
	}

	return fromTicketDoc(&d), nil
}

func (r *ticketRepository) List(ctx context.Context, limit, offset int) ([]*model.Ticket, error) {
	q := r.collection().OrderBy("TicketID", firestore.Asc)
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	tickets := make([]*model.Ticket, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(types.ErrStoreBackend, "failed to iterate tickets", goerr.V("cause", err))
		}

		var d ticketDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(types.ErrStoreBackend, "failed to unmarshal ticket", goerr.V("cause", err))
		}

		tickets = append(tickets, fromTicketDoc(&d))
	}

	return tickets, nil
}
