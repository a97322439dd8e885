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

func TestTicketGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	repo.AddTicket(&model.Ticket{ID: 5, Subject: "Printer offline", Status: types.TicketStatusOpen})

	t.Run("returns seeded ticket", func(t *testing.T) {
		ticket, err := repo.Ticket().Get(ctx, 5)
		gt.NoError(t, err).Required()
		gt.Value(t, ticket.Subject).Equal("Printer offline")
	})

	t.Run("unknown ID returns not found", func(t *testing.T) {
		_, err := repo.Ticket().Get(ctx, 6)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})

	t.Run("returned ticket is a copy", func(t *testing.T) {
		ticket, err := repo.Ticket().Get(ctx, 5)
		gt.NoError(t, err).Required()
		ticket.Subject = "mutated"

		again, err := repo.Ticket().Get(ctx, 5)
		gt.NoError(t, err).Required()
		gt.Value(t, again.Subject).Equal("Printer offline")
	})
}

func TestTicketList(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	for _, id := range []int64{3, 1, 2, 5, 4} {
		repo.AddTicket(&model.Ticket{ID: id})
	}

	t.Run("lists in ascending ID order", func(t *testing.T) {
		tickets, err := repo.Ticket().List(ctx, 0, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, tickets).Length(5)
		for i, ticket := range tickets {
			gt.Value(t, ticket.ID).Equal(int64(i + 1))
		}
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		tickets, err := repo.Ticket().List(ctx, 2, 1)
		gt.NoError(t, err).Required()
		gt.Array(t, tickets).Length(2)
		gt.Value(t, tickets[0].ID).Equal(int64(2))
		gt.Value(t, tickets[1].ID).Equal(int64(3))
	})

	t.Run("offset past the end yields empty", func(t *testing.T) {
		tickets, err := repo.Ticket().List(ctx, 10, 100)
		gt.NoError(t, err).Required()
		gt.Array(t, tickets).Length(0)
	})
}
