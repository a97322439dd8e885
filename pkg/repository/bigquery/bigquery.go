package bigquery

import (
	"context"
	"fmt"
	"regexp"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketlens/pkg/domain/types"
)

// identPattern restricts dataset/table/model identifiers that are spliced
// into query text. User-supplied values (texts, vectors, IDs) always travel
// as query parameters, never as literals.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Client is the BigQuery-backed repository. It also implements
// interfaces.EmbeddingModel through ML.GENERATE_EMBEDDING, so the warehouse
// can serve both as vector store and embedding backend.
type Client struct {
	bq        *bigquery.Client
	projectID string

	dataset        string
	embeddingTable string
	ticketDataset  string
	ticketTable    string
	modelDataset   string
	modelName      string

	ticket    *ticketRepository
	embedding *embeddingRepository
}

var _ interfaces.Repository = &Client{}
var _ interfaces.EmbeddingModel = &Client{}

type Option func(*Client)

// WithDataset sets the dataset holding the embeddings table.
func WithDataset(dataset string) Option {
	return func(c *Client) { c.dataset = dataset }
}

// WithEmbeddingTable sets the embeddings table name.
func WithEmbeddingTable(table string) Option {
	return func(c *Client) { c.embeddingTable = table }
}

// WithTicketTable sets the dataset and table of the external raw tickets.
func WithTicketTable(dataset, table string) Option {
	return func(c *Client) {
		c.ticketDataset = dataset
		c.ticketTable = table
	}
}

// WithEmbeddingModel sets the dataset and name of the remote embedding model.
func WithEmbeddingModel(dataset, name string) Option {
	return func(c *Client) {
		c.modelDataset = dataset
		c.modelName = name
	}
}

func New(ctx context.Context, projectID string, opts ...Option) (*Client, error) {
	if projectID == "" {
		return nil, goerr.New("BigQuery project ID is required")
	}

	bq, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery client", goerr.V("projectID", projectID))
	}

	c := &Client{
		bq:        bq,
		projectID: projectID,

		dataset:        "embeddings",
		embeddingTable: "ticket_embeddings",
		ticketDataset:  "support_tickets_raw",
		ticketTable:    "tickets",
		modelDataset:   "ml_playground",
		modelName:      "text_embed_model",
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, ident := range []string{c.dataset, c.embeddingTable, c.ticketDataset, c.ticketTable, c.modelDataset, c.modelName} {
		if !identPattern.MatchString(ident) {
			return nil, goerr.New("invalid BigQuery identifier", goerr.V("identifier", ident))
		}
	}

	c.ticket = &ticketRepository{client: c}
	c.embedding = &embeddingRepository{client: c}

	return c, nil
}

func (c *Client) Ticket() interfaces.TicketRepository {
	return c.ticket
}

func (c *Client) Embedding() interfaces.EmbeddingRepository {
	return c.embedding
}

// Ping runs a trivial query to verify connectivity and authentication.
func (c *Client) Ping(ctx context.Context) error {
	q := c.bq.Query("SELECT 1")
	it, err := q.Read(ctx)
	if err != nil {
		return goerr.Wrap(types.ErrStoreBackend, "BigQuery connectivity check failed", goerr.V("cause", err))
	}
	var row []bigquery.Value
	if err := it.Next(&row); err != nil {
		return goerr.Wrap(types.ErrStoreBackend, "BigQuery connectivity check returned no rows", goerr.V("cause", err))
	}
	return nil
}

func (c *Client) Close() error {
	if c.bq != nil {
		return c.bq.Close()
	}
	return nil
}

func (c *Client) embeddingTableFQN() string {
	return fmt.Sprintf("`%s.%s.%s`", c.projectID, c.dataset, c.embeddingTable)
}

func (c *Client) ticketTableFQN() string {
	return fmt.Sprintf("`%s.%s.%s`", c.projectID, c.ticketDataset, c.ticketTable)
}

func (c *Client) modelFQN() string {
	return fmt.Sprintf("`%s.%s.%s`", c.projectID, c.modelDataset, c.modelName)
}

// runDML executes a DML query and returns the affected row count, or -1
// when the job statistics do not carry one.
func (c *Client) runDML(ctx context.Context, q *bigquery.Query) (int64, error) {
	job, err := q.Run(ctx)
	if err != nil {
		return -1, err
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return -1, err
	}
	if err := status.Err(); err != nil {
		return -1, err
	}

	if stats, ok := job.LastStatus().Statistics.Details.(*bigquery.QueryStatistics); ok {
		return stats.NumDMLAffectedRows, nil
	}
	return -1, nil
}
