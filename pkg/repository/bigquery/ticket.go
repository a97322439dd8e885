package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
	"github.com/secmon-lab/ticketlens/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type ticketRepository struct {
	client *Client
}

type ticketRow struct {
	TicketID    int64               `bigquery:"ticket_id"`
	Subject     bigquery.NullString `bigquery:"ticket_subject"`
	Description bigquery.NullString `bigquery:"ticket_description"`
	Resolution  bigquery.NullString `bigquery:"ticket_resolution"`
	Status      bigquery.NullString `bigquery:"ticket_status"`
	CreatedAt   civil.Date          `bigquery:"ticket_created_at"`
}

func (r ticketRow) toModel() *model.Ticket {
	return &model.Ticket{
		ID:          r.TicketID,
		Subject:     r.Subject.StringVal,
		Description: r.Description.StringVal,
		Resolution:  r.Resolution.StringVal,
		Status:      types.TicketStatus(r.Status.StringVal),
		CreatedAt:   time.Date(r.CreatedAt.Year, r.CreatedAt.Month, r.CreatedAt.Day, 0, 0, 0, 0, time.UTC),
	}
}

const ticketColumns = "ticket_id, ticket_subject, ticket_description, ticket_resolution, ticket_status, ticket_created_at"

func (r *ticketRepository) Get(ctx context.Context, ticketID int64) (*model.Ticket, error) {
	sql := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE ticket_id = @ticket_id`, ticketColumns, r.client.ticketTableFQN())

	q := r.client.bq.Query(sql)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "ticket_id", Value: ticketID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, goerr.Wrap(types.ErrStoreBackend, "failed to read ticket",
			goerr.V("ticketID", ticketID),
			goerr.V("cause", err))
	}

	var row ticketRow
	if err := it.Next(&row); err != nil {
		if err == iterator.Done {
			return nil, goerr.Wrap(types.ErrNotFound, "ticket not found", goerr.V("ticketID", ticketID))
		}
		return nil, goerr.Wrap(types.ErrStoreBackend, "failed to iterate ticket row",
			goerr.V("ticketID", ticketID),
			goerr.V("cause", err))
	}

	return row.toModel(), nil
}

func (r *ticketRepository) List(ctx context.Context, limit, offset int) ([]*model.Ticket, error) {
	sql, params, skip := listTicketsSQL(r.client.ticketTableFQN(), limit, offset)

	q := r.client.bq.Query(sql)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, goerr.Wrap(types.ErrStoreBackend, "failed to list tickets", goerr.V("cause", err))
	}

	var tickets []*model.Ticket
	for {
		var row ticketRow
		if err := it.Next(&row); err != nil {
			if err == iterator.Done {
				break
			}
			return nil, goerr.Wrap(types.ErrStoreBackend, "failed to iterate ticket rows", goerr.V("cause", err))
		}
		if skip > 0 {
			skip--
			continue
		}
		tickets = append(tickets, row.toModel())
	}

	return tickets, nil
}

// listTicketsSQL builds the ticket listing query. With a positive limit the
// paging happens in BigQuery. Without one there is no LIMIT clause, since
// BigQuery allows OFFSET only alongside LIMIT, so the returned skip count
// tells the caller how many leading rows to drop while draining.
func listTicketsSQL(tableFQN string, limit, offset int) (string, []bigquery.QueryParameter, int) {
	sql := fmt.Sprintf(`
SELECT %s
FROM %s
ORDER BY ticket_id ASC`, ticketColumns, tableFQN)

	if limit <= 0 {
		return sql, nil, offset
	}

	sql += "\nLIMIT @limit OFFSET @offset"
	params := []bigquery.QueryParameter{
		{Name: "limit", Value: int64(limit)},
		{Name: "offset", Value: int64(offset)},
	}
	return sql, params, 0
}
