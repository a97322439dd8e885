package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketlens/pkg/repository/bigquery"
	"github.com/secmon-lab/ticketlens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Embedder holds CLI flags selecting the embedding backend
type Embedder struct {
	backend string
	gemini  Gemini
}

// Flags returns CLI flags for embedder configuration
func (e *Embedder) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "embedder-backend",
			Usage:       "Embedding backend (gemini or bigquery)",
			Value:       "gemini",
			Sources:     cli.EnvVars("TICKETLENS_EMBEDDER_BACKEND"),
			Destination: &e.backend,
		},
	}
	flags = append(flags, e.gemini.Flags()...)
	return flags
}

// Backend returns the configured embedder backend
func (e *Embedder) Backend() string {
	return e.backend
}

// Configure builds the embedding model from the configured flags. The
// bigquery backend reuses the repository's client so embedding and storage
// share one connection, and therefore requires the bigquery repository
// backend.
func (e *Embedder) Configure(ctx context.Context, repo interfaces.Repository) (interfaces.EmbeddingModel, error) {
	switch e.backend {
	case "gemini":
		client, err := e.gemini.Configure(ctx)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, goerr.New("gemini-project is required when using gemini embedder")
		}
		logging.Default().Info("Using Gemini embedding backend", "gemini", e.gemini)
		return client, nil

	case "bigquery":
		bq, ok := repo.(*bigquery.Client)
		if !ok {
			return nil, goerr.New("bigquery embedder requires the bigquery repository backend")
		}
		logging.Default().Info("Using BigQuery ML embedding backend")
		return bq, nil

	default:
		return nil, goerr.New("invalid embedder backend", goerr.V("backend", e.backend))
	}
}
