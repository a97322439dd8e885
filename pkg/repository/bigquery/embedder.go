package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

type generateEmbeddingRow struct {
	Idx       int64     `bigquery:"idx"`
	Embedding []float64 `bigquery:"embedding"`
}

// GenerateEmbedding obtains embedding vectors from the remote embedding
// model via ML.GENERATE_EMBEDDING. Input texts travel as an array query
// parameter; no escaping of quotes or newlines is needed. Each text
// carries its array offset through the model call, since BigQuery does
// not guarantee output row order, and results are placed back by that
// offset. The dimension argument is advisory here: the remote model's
// output size is fixed and the caller validates the shape.
func (c *Client) GenerateEmbedding(ctx context.Context, dimension int, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, goerr.New("no texts to embed")
	}

	sql := fmt.Sprintf(`
SELECT idx, ml_generate_embedding_result AS embedding
FROM ML.GENERATE_EMBEDDING(
  MODEL %s,
  (SELECT content, idx FROM UNNEST(@contents) AS content WITH OFFSET AS idx),
  STRUCT(TRUE AS flatten_json_output)
)`, c.modelFQN())

	q := c.bq.Query(sql)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "contents", Value: texts},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to run embedding query", goerr.V("model", c.modelFQN()))
	}

	var rows []generateEmbeddingRow
	for {
		var row generateEmbeddingRow
		if err := it.Next(&row); err != nil {
			if err == iterator.Done {
				break
			}
			return nil, goerr.Wrap(err, "failed to iterate embedding results")
		}
		rows = append(rows, row)
	}

	return orderEmbeddings(rows, len(texts))
}

// orderEmbeddings places result rows back into input order by their carried
// array offset and rejects missing or out-of-range results.
func orderEmbeddings(rows []generateEmbeddingRow, n int) ([][]float64, error) {
	embeddings := make([][]float64, n)
	for _, row := range rows {
		if row.Idx < 0 || row.Idx >= int64(n) {
			return nil, goerr.New("embedding result index out of range", goerr.V("idx", row.Idx))
		}
		embeddings[row.Idx] = row.Embedding
	}

	for i, emb := range embeddings {
		if emb == nil {
			return nil, goerr.New("missing embedding result",
				goerr.V("idx", i),
				goerr.V("expected", n))
		}
	}

	return embeddings, nil
}
