package memory

import (
	"context"

	"github.com/secmon-lab/ticketlens/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is an in-memory repository for development and testing.
type Memory struct {
	ticket    *ticketRepository
	embedding *embeddingRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	ticketRepo := newTicketRepository()
	embeddingRepo := newEmbeddingRepository(ticketRepo)

	return &Memory{
		ticket:    ticketRepo,
		embedding: embeddingRepo,
	}
}

func (m *Memory) Ticket() interfaces.TicketRepository {
	return m.ticket
}

func (m *Memory) Embedding() interfaces.EmbeddingRepository {
	return m.embedding
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}

// AddTicket seeds a ticket into the in-memory ticket store. The ticket
// store is an external collaborator in production backends; this helper
// exists for development and tests only.
func (m *Memory) AddTicket(t *model.Ticket) {
	m.ticket.put(t)
}
