package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/ticketlens/pkg/cli/config"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
	"github.com/secmon-lab/ticketlens/pkg/repository/bigquery"
	"github.com/secmon-lab/ticketlens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Provision storage for ticket embeddings",
		Commands: []*cli.Command{
			cmdMigrateBigQuery(),
			cmdMigrateFirestore(),
		},
	}
}

func cmdMigrateBigQuery() *cli.Command {
	var createModel bool
	var connectionID string
	var modelEndpoint string
	var bqCfg config.BigQuery

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "create-model",
			Usage:       "Also provision the remote embedding model",
			Destination: &createModel,
		},
		&cli.StringFlag{
			Name:        "connection",
			Usage:       "Vertex AI connection ID (e.g. us-west1.vertex_ai_connection)",
			Sources:     cli.EnvVars("TICKETLENS_BIGQUERY_CONNECTION"),
			Destination: &connectionID,
		},
		&cli.StringFlag{
			Name:        "model-endpoint",
			Usage:       "Embedding model endpoint name (e.g. text-embedding-004)",
			Value:       "text-embedding-004",
			Sources:     cli.EnvVars("TICKETLENS_BIGQUERY_MODEL_ENDPOINT"),
			Destination: &modelEndpoint,
		},
	}
	flags = append(flags, bqCfg.Flags()...)

	return &cli.Command{
		Name:  "bigquery",
		Usage: "Create the embeddings dataset, table, and remote model",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Migrate configuration", "bigquery", bqCfg, "createModel", createModel)

			client, err := bqCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to create BigQuery client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close BigQuery client", "error", err.Error())
				}
			}()

			if err := client.Migrate(ctx, bigquery.MigrateOptions{
				CreateModel:   createModel,
				ConnectionID:  connectionID,
				ModelEndpoint: modelEndpoint,
			}); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}

			logger.Info("Migrations applied successfully")
			return nil
		},
	}
}

func cmdMigrateFirestore() *cli.Command {
	var projectID string
	var databaseID string
	var collectionPrefix string
	var dryRun bool

	return &cli.Command{
		Name:  "firestore",
		Usage: "Create the Firestore vector index for embeddings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("TICKETLENS_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("TICKETLENS_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.StringFlag{
				Name:        "collection-prefix",
				Usage:       "Prefix applied to collection names",
				Sources:     cli.EnvVars("TICKETLENS_FIRESTORE_COLLECTION_PREFIX"),
				Destination: &collectionPrefix,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"dryRun", dryRun)

			indexConfig := firestoreIndexConfig(collectionPrefix)

			client, err := fireconf.NewClient(ctx, projectID, databaseID)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
				plan, err := client.GetMigrationPlan(ctx, indexConfig)
				if err != nil {
					return goerr.Wrap(err, "failed to create migration plan")
				}

				if len(plan.Steps) == 0 {
					logger.Info("No changes required")
					return nil
				}

				for _, step := range plan.Steps {
					logger.Info("Migration step",
						"collection", step.Collection,
						"operation", step.Operation,
						"description", step.Description,
						"destructive", step.Destructive)
				}
				return nil
			}

			logger.Info("Applying migrations")
			if err := client.Migrate(ctx, indexConfig); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}
			logger.Info("Migrations applied successfully")
			return nil
		},
	}
}

// firestoreIndexConfig returns the vector index required by FindNearest on
// the embeddings collection.
func firestoreIndexConfig(prefix string) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: prefix + "ticket_embeddings",
				Indexes: []fireconf.Index{
					{
						Fields: []fireconf.IndexField{
							{
								Path: "Embedding",
								Vector: &fireconf.VectorConfig{
									Dimension: model.EmbeddingDimension,
								},
							},
						},
					},
				},
			},
		},
	}
}
