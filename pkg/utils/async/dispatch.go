package async

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/utils/logging"
)

// Dispatch runs a handler in a new goroutine detached from the request
// context. The handler gets a background context carrying the request's
// logger tagged with a job ID, and panics are contained to the goroutine.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	jobID := uuid.New().String()
	logger := logging.From(ctx).With("job_id", jobID)
	bgCtx := logging.With(context.Background(), logger)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logger.Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
