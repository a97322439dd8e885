package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/utils/logging"
	"google.golang.org/api/googleapi"
)

// BigQuery does not accept query parameters in DDL statements, so the
// connection ID and model endpoint must be spliced into the CREATE MODEL
// text. These allowlists bound what can be spliced.
var (
	connectionPattern = regexp.MustCompile(`^[a-z0-9-]+\.[A-Za-z_][A-Za-z0-9_-]*$`)
	endpointPattern   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// MigrateOptions controls what Migrate provisions.
type MigrateOptions struct {
	// CreateModel provisions the remote embedding model. Requires a Vertex
	// AI connection (e.g. "us-west1.vertex_ai_connection") and the endpoint
	// name of the embedding model (e.g. "text-embedding-004").
	CreateModel   bool
	ConnectionID  string
	ModelEndpoint string
}

// Migrate provisions the embeddings dataset and table, and optionally the
// remote embedding model. Existing resources are left untouched.
func (c *Client) Migrate(ctx context.Context, opts MigrateOptions) error {
	logger := logging.From(ctx)

	ds := c.bq.Dataset(c.dataset)
	if err := ds.Create(ctx, &bigquery.DatasetMetadata{Name: c.dataset}); err != nil {
		if !isAlreadyExists(err) {
			return goerr.Wrap(err, "failed to create dataset", goerr.V("dataset", c.dataset))
		}
		logger.Info("Dataset already exists", "dataset", c.dataset)
	} else {
		logger.Info("Created dataset", "dataset", c.dataset)
	}

	schema := bigquery.Schema{
		{Name: "ticket_id", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "embedding_vector", Type: bigquery.FloatFieldType, Repeated: true},
		{Name: "text_content", Type: bigquery.StringFieldType},
		{Name: "created_at", Type: bigquery.TimestampFieldType},
	}

	table := ds.Table(c.embeddingTable)
	if err := table.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		if !isAlreadyExists(err) {
			return goerr.Wrap(err, "failed to create embeddings table", goerr.V("table", c.embeddingTable))
		}
		logger.Info("Embeddings table already exists", "table", c.embeddingTable)
	} else {
		logger.Info("Created embeddings table", "table", c.embeddingTable)
	}

	if !opts.CreateModel {
		return nil
	}

	sql, err := createModelSQL(c.projectID, c.modelFQN(), opts)
	if err != nil {
		return err
	}

	if _, err := c.runDML(ctx, c.bq.Query(sql)); err != nil {
		return goerr.Wrap(err, "failed to create remote embedding model",
			goerr.V("model", c.modelFQN()),
			goerr.V("connection", opts.ConnectionID))
	}
	logger.Info("Remote embedding model is ready", "model", c.modelFQN(), "endpoint", opts.ModelEndpoint)

	return nil
}

// createModelSQL builds the CREATE MODEL DDL with the connection and
// endpoint inlined as validated literals.
func createModelSQL(projectID, modelFQN string, opts MigrateOptions) (string, error) {
	if opts.ConnectionID == "" || opts.ModelEndpoint == "" {
		return "", goerr.New("connection ID and model endpoint are required to create the embedding model")
	}
	if !connectionPattern.MatchString(opts.ConnectionID) {
		return "", goerr.New("invalid Vertex AI connection ID", goerr.V("connection", opts.ConnectionID))
	}
	if !endpointPattern.MatchString(opts.ModelEndpoint) {
		return "", goerr.New("invalid embedding model endpoint", goerr.V("endpoint", opts.ModelEndpoint))
	}

	return fmt.Sprintf(`
CREATE MODEL IF NOT EXISTS %s
REMOTE WITH CONNECTION `+"`%s.%s`"+`
OPTIONS (
  remote_service_type = 'CLOUD_AI_TEXT_EMBEDDING_MODEL_V1',
  endpoint = '%s'
)`, modelFQN, projectID, opts.ConnectionID, opts.ModelEndpoint), nil
}

func isAlreadyExists(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusConflict
	}
	return false
}
