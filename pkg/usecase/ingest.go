package usecase

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/types"
	"github.com/secmon-lab/ticketlens/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// IngestSummary reports the outcome of a bulk reindex run.
type IngestSummary struct {
	Processed int64
	Stored    int64
	Skipped   int64
	Failed    int64
}

// ReindexAll walks the ticket store page by page, composing and embedding
// each ticket and upserting the result. Tickets without usable text are
// skipped. Individual embed/store failures are counted and logged; the run
// continues so one broken ticket does not abort a backfill. workers bounds
// the number of concurrent embed/store operations.
func (uc *UseCases) ReindexAll(ctx context.Context, workers int) (*IngestSummary, error) {
	if workers <= 0 {
		workers = 4
	}

	logger := logging.From(ctx)
	summary := &IngestSummary{}

	for offset := 0; ; offset += uc.ingestLimit {
		tickets, err := uc.repo.Ticket().List(ctx, uc.ingestLimit, offset)
		if err != nil {
			return summary, goerr.Wrap(err, "failed to list tickets for reindex",
				goerr.V("offset", offset))
		}
		if len(tickets) == 0 {
			break
		}

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(workers)

		for _, ticket := range tickets {
			atomic.AddInt64(&summary.Processed, 1)

			if uc.resolvedOnly && !ticket.Status.IsResolved() {
				atomic.AddInt64(&summary.Skipped, 1)
				continue
			}

			eg.Go(func() error {
				if _, err := uc.EmbedAndStoreTicket(egCtx, ticket); err != nil {
					if errors.Is(err, types.ErrInvalidInput) {
						atomic.AddInt64(&summary.Skipped, 1)
						return nil
					}
					atomic.AddInt64(&summary.Failed, 1)
					logger.Warn("failed to reindex ticket",
						"ticket_id", ticket.ID,
						"error", err)
					return nil
				}
				atomic.AddInt64(&summary.Stored, 1)
				return nil
			})
		}

		if err := eg.Wait(); err != nil {
			return summary, goerr.Wrap(err, "reindex worker group failed")
		}

		if len(tickets) < uc.ingestLimit {
			break
		}
	}

	return summary, nil
}
