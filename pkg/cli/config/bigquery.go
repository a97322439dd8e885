package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/repository/bigquery"
	"github.com/urfave/cli/v3"
)

// BigQuery holds CLI flags for the BigQuery warehouse configuration
type BigQuery struct {
	projectID      string
	dataset        string
	embeddingTable string
	ticketDataset  string
	ticketTable    string
	modelDataset   string
	modelName      string
}

// Flags returns CLI flags for BigQuery configuration
func (b *BigQuery) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bigquery-project-id",
			Usage:       "Google Cloud project ID for BigQuery (required when using bigquery backend)",
			Sources:     cli.EnvVars("TICKETLENS_BIGQUERY_PROJECT_ID"),
			Destination: &b.projectID,
		},
		&cli.StringFlag{
			Name:        "bigquery-dataset",
			Usage:       "Dataset holding the embeddings table",
			Value:       "embeddings",
			Sources:     cli.EnvVars("TICKETLENS_BIGQUERY_DATASET"),
			Destination: &b.dataset,
		},
		&cli.StringFlag{
			Name:        "bigquery-embedding-table",
			Usage:       "Table holding ticket embeddings",
			Value:       "ticket_embeddings",
			Sources:     cli.EnvVars("TICKETLENS_BIGQUERY_EMBEDDING_TABLE"),
			Destination: &b.embeddingTable,
		},
		&cli.StringFlag{
			Name:        "bigquery-ticket-dataset",
			Usage:       "Dataset holding the raw support tickets",
			Value:       "support_tickets_raw",
			Sources:     cli.EnvVars("TICKETLENS_BIGQUERY_TICKET_DATASET"),
			Destination: &b.ticketDataset,
		},
		&cli.StringFlag{
			Name:        "bigquery-ticket-table",
			Usage:       "Table holding the raw support tickets",
			Value:       "tickets",
			Sources:     cli.EnvVars("TICKETLENS_BIGQUERY_TICKET_TABLE"),
			Destination: &b.ticketTable,
		},
		&cli.StringFlag{
			Name:        "bigquery-model-dataset",
			Usage:       "Dataset holding the remote embedding model",
			Value:       "ml_playground",
			Sources:     cli.EnvVars("TICKETLENS_BIGQUERY_MODEL_DATASET"),
			Destination: &b.modelDataset,
		},
		&cli.StringFlag{
			Name:        "bigquery-model-name",
			Usage:       "Name of the remote embedding model",
			Value:       "text_embed_model",
			Sources:     cli.EnvVars("TICKETLENS_BIGQUERY_MODEL_NAME"),
			Destination: &b.modelName,
		},
	}
}

// ProjectID returns the configured BigQuery project ID
func (b *BigQuery) ProjectID() string {
	return b.projectID
}

// LogValue returns log attributes for the BigQuery configuration
func (b BigQuery) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("project_id", b.projectID),
		slog.String("dataset", b.dataset),
		slog.String("embedding_table", b.embeddingTable),
		slog.String("ticket_dataset", b.ticketDataset),
		slog.String("ticket_table", b.ticketTable),
		slog.String("model", b.modelDataset+"."+b.modelName),
	)
}

// Configure creates a BigQuery client from the configured flags.
// The caller is responsible for calling Close() on the returned client.
func (b *BigQuery) Configure(ctx context.Context) (*bigquery.Client, error) {
	if b.projectID == "" {
		return nil, goerr.New("bigquery-project-id is required when using bigquery backend")
	}

	client, err := bigquery.New(ctx, b.projectID,
		bigquery.WithDataset(b.dataset),
		bigquery.WithEmbeddingTable(b.embeddingTable),
		bigquery.WithTicketTable(b.ticketDataset, b.ticketTable),
		bigquery.WithEmbeddingModel(b.modelDataset, b.modelName),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery client")
	}

	return client, nil
}
