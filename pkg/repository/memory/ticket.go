package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
	"github.com/secmon-lab/ticketlens/pkg/domain/types"
)

type ticketRepository struct {
	mu      sync.RWMutex
	tickets map[int64]*model.Ticket
}

func newTicketRepository() *ticketRepository {
	return &ticketRepository{
		tickets: make(map[int64]*model.Ticket),
	}
}

func copyTicket(t *model.Ticket) *model.Ticket {
	copied := *t
	return &copied
}

func (r *ticketRepository) put(t *model.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[t.ID] = copyTicket(t)
}

func (r *ticketRepository) Get(ctx context.Context, ticketID int64) (*model.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tickets[ticketID]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "ticket not found", goerr.V("ticketID", ticketID))
	}

	return copyTicket(t), nil
}

func (r *ticketRepository) List(ctx context.Context, limit, offset int) ([]*model.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*model.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		all = append(all, copyTicket(t))
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].ID < all[j].ID
	})

	if offset > 0 {
		if offset >= len(all) {
			return []*model.Ticket{}, nil
		}
		all = all[offset:]
	}
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}

	return all, nil
}
