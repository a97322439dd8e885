package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketlens/pkg/repository/firestore"
	"github.com/secmon-lab/ticketlens/pkg/repository/memory"
	"github.com/secmon-lab/ticketlens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend    string
	projectID  string
	databaseID string

	bigquery BigQuery
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (bigquery, firestore or memory)",
			Value:       "bigquery",
			Sources:     cli.EnvVars("TICKETLENS_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("TICKETLENS_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("TICKETLENS_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
	}
	flags = append(flags, r.bigquery.Flags()...)
	return flags
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// BigQuery returns the BigQuery sub-configuration
func (r *Repository) BigQuery() *BigQuery {
	return &r.bigquery
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "bigquery":
		repo, err := r.bigquery.Configure(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize bigquery repository")
		}
		logging.Default().Info("Using BigQuery repository", "bigquery", r.bigquery)
		return repo, nil

	case "firestore":
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid repository backend", goerr.V("backend", r.backend))
	}
}
