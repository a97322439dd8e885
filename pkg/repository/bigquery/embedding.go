package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
	"github.com/secmon-lab/ticketlens/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type embeddingRepository struct {
	client *Client
}

func (r *embeddingRepository) Store(ctx context.Context, ticketID int64, vec model.EmbeddingVector, text string, upsert bool) (*model.StoreResult, error) {
	if err := model.ValidateStoreInput(ticketID, vec); err != nil {
		return nil, err
	}

	table := r.client.embeddingTableFQN()

	var sql string
	if upsert {
		// Single atomic server-side upsert. created_at is written only on
		// the insert branch so the original insert time survives updates.
		sql = fmt.Sprintf(`
MERGE %s T
USING (
  SELECT
    @ticket_id AS ticket_id,
    @embedding AS embedding_vector,
    @text      AS text_content
) S
ON T.ticket_id = S.ticket_id
WHEN MATCHED THEN
  UPDATE SET
    embedding_vector = S.embedding_vector,
    text_content     = S.text_content
WHEN NOT MATCHED THEN
  INSERT (ticket_id, embedding_vector, text_content, created_at)
  VALUES (S.ticket_id, S.embedding_vector, S.text_content, CURRENT_TIMESTAMP())`, table)
	} else {
		// Guarded insert: writes nothing when the key already exists, which
		// shows up as zero affected rows and maps to a conflict.
		sql = fmt.Sprintf(`
INSERT INTO %s (ticket_id, embedding_vector, text_content, created_at)
SELECT @ticket_id, @embedding, @text, CURRENT_TIMESTAMP()
FROM (SELECT 1)
WHERE NOT EXISTS (
  SELECT 1 FROM %s WHERE ticket_id = @ticket_id
)`, table, table)
	}

	q := r.client.bq.Query(sql)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "ticket_id", Value: ticketID},
		{Name: "embedding", Value: []float64(vec)},
		{Name: "text", Value: text},
	}

	affected, err := r.client.runDML(ctx, q)
	if err != nil {
		return nil, goerr.Wrap(types.ErrStoreBackend, "failed to store embedding",
			goerr.V("ticketID", ticketID),
			goerr.V("upsert", upsert),
			goerr.V("cause", err))
	}

	if !upsert && affected == 0 {
		return nil, goerr.Wrap(types.ErrStoreConflict, "embedding record already exists",
			goerr.V("ticketID", ticketID))
	}

	return &model.StoreResult{AffectedRows: affected}, nil
}

type embeddingRow struct {
	TicketID    int64               `bigquery:"ticket_id"`
	Embedding   []float64           `bigquery:"embedding_vector"`
	TextContent bigquery.NullString `bigquery:"text_content"`
	CreatedAt   time.Time           `bigquery:"created_at"`
}

func (r *embeddingRepository) Get(ctx context.Context, ticketID int64) (*model.EmbeddingRecord, error) {
	sql := fmt.Sprintf(`
SELECT ticket_id, embedding_vector, text_content, created_at
FROM %s
WHERE ticket_id = @ticket_id`, r.client.embeddingTableFQN())

	q := r.client.bq.Query(sql)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "ticket_id", Value: ticketID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, goerr.Wrap(types.ErrStoreBackend, "failed to read embedding record",
			goerr.V("ticketID", ticketID),
			goerr.V("cause", err))
	}

	var row embeddingRow
	if err := it.Next(&row); err != nil {
		if err == iterator.Done {
			return nil, goerr.Wrap(types.ErrNotFound, "embedding record not found",
				goerr.V("ticketID", ticketID))
		}
		return nil, goerr.Wrap(types.ErrStoreBackend, "failed to iterate embedding record",
			goerr.V("ticketID", ticketID),
			goerr.V("cause", err))
	}

	return &model.EmbeddingRecord{
		TicketID:    row.TicketID,
		Embedding:   model.EmbeddingVector(row.Embedding),
		TextContent: row.TextContent.StringVal,
		CreatedAt:   row.CreatedAt,
	}, nil
}

type candidateRow struct {
	TicketID    int64               `bigquery:"ticket_id"`
	Subject     bigquery.NullString `bigquery:"subject"`
	Description bigquery.NullString `bigquery:"description"`
	Resolution  bigquery.NullString `bigquery:"resolution"`
	Distance    float64             `bigquery:"distance"`
}

func (r *embeddingRepository) FindSimilar(ctx context.Context, embedding model.EmbeddingVector, limit int) ([]*model.SearchCandidate, error) {
	if limit <= 0 {
		return []*model.SearchCandidate{}, nil
	}

	// ML.DISTANCE with the COSINE metric yields distances in [0, 2], the
	// range the similarity mapping downstream depends on.
	sql := fmt.Sprintf(`
SELECT
  t.ticket_id          AS ticket_id,
  t.ticket_subject     AS subject,
  t.ticket_description AS description,
  t.ticket_resolution  AS resolution,
  ML.DISTANCE(e.embedding_vector, @query_embedding, 'COSINE') AS distance
FROM %s e
JOIN %s t
  ON e.ticket_id = t.ticket_id
ORDER BY distance ASC
LIMIT @limit`, r.client.embeddingTableFQN(), r.client.ticketTableFQN())

	q := r.client.bq.Query(sql)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "query_embedding", Value: []float64(embedding)},
		{Name: "limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, goerr.Wrap(types.ErrStoreBackend, "failed to run similarity query", goerr.V("cause", err))
	}

	candidates := make([]*model.SearchCandidate, 0, limit)
	for {
		var row candidateRow
		if err := it.Next(&row); err != nil {
			if err == iterator.Done {
				break
			}
			return nil, goerr.Wrap(types.ErrStoreBackend, "failed to iterate similarity results", goerr.V("cause", err))
		}

		candidates = append(candidates, &model.SearchCandidate{
			TicketID:    row.TicketID,
			Subject:     row.Subject.StringVal,
			Description: row.Description.StringVal,
			Resolution:  row.Resolution.StringVal,
			Distance:    row.Distance,
		})
	}

	return candidates, nil
}
