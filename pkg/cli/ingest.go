package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/ticketlens/pkg/cli/config"
	"github.com/secmon-lab/ticketlens/pkg/service/embedding"
	"github.com/secmon-lab/ticketlens/pkg/usecase"
	"github.com/secmon-lab/ticketlens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdIngest() *cli.Command {
	var workers int
	var pageSize int
	var resolvedOnly bool
	var repoCfg config.Repository
	var embedderCfg config.Embedder

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "workers",
			Usage:       "Number of concurrent embedding workers",
			Value:       4,
			Sources:     cli.EnvVars("TICKETLENS_INGEST_WORKERS"),
			Destination: &workers,
		},
		&cli.IntFlag{
			Name:        "page-size",
			Usage:       "Number of tickets fetched per page",
			Value:       500,
			Sources:     cli.EnvVars("TICKETLENS_INGEST_PAGE_SIZE"),
			Destination: &pageSize,
		},
		&cli.BoolFlag{
			Name:        "resolved-only",
			Usage:       "Embed only tickets whose status is resolved",
			Sources:     cli.EnvVars("TICKETLENS_INGEST_RESOLVED_ONLY"),
			Destination: &resolvedOnly,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, embedderCfg.Flags()...)

	return &cli.Command{
		Name:  "ingest",
		Usage: "Embed and store all tickets from the raw ticket table",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			embedder, err := embedderCfg.Configure(ctx, repo)
			if err != nil {
				return goerr.Wrap(err, "failed to configure embedding backend")
			}

			generator, err := embedding.New(embedder)
			if err != nil {
				return goerr.Wrap(err, "failed to create embedding generator")
			}

			uc := usecase.New(repo, generator,
				usecase.WithIngestPageSize(pageSize),
				usecase.WithResolvedOnly(resolvedOnly),
			)

			summary, err := uc.ReindexAll(ctx, workers)
			if err != nil {
				return goerr.Wrap(err, "reindex failed")
			}

			logging.Default().Info("Reindex completed",
				"processed", summary.Processed,
				"stored", summary.Stored,
				"skipped", summary.Skipped,
				"failed", summary.Failed,
			)
			return nil
		},
	}
}
