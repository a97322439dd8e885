package bigquery_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ticketlens/pkg/repository/bigquery"
)

func TestOrderEmbeddings(t *testing.T) {
	t.Run("restores input order from carried offsets", func(t *testing.T) {
		rows := []bigquery.GenerateEmbeddingRow{
			{Idx: 2, Embedding: []float64{0.3}},
			{Idx: 0, Embedding: []float64{0.1}},
			{Idx: 1, Embedding: []float64{0.2}},
		}
		embeddings, err := bigquery.OrderEmbeddings(rows, 3)
		gt.NoError(t, err).Required()
		gt.Array(t, embeddings).Length(3).Required()
		gt.Value(t, embeddings[0][0]).Equal(0.1)
		gt.Value(t, embeddings[1][0]).Equal(0.2)
		gt.Value(t, embeddings[2][0]).Equal(0.3)
	})

	t.Run("rejects missing results", func(t *testing.T) {
		rows := []bigquery.GenerateEmbeddingRow{
			{Idx: 0, Embedding: []float64{0.1}},
		}
		_, err := bigquery.OrderEmbeddings(rows, 2)
		gt.Error(t, err)
	})

	t.Run("rejects out-of-range offsets", func(t *testing.T) {
		rows := []bigquery.GenerateEmbeddingRow{
			{Idx: 5, Embedding: []float64{0.1}},
		}
		_, err := bigquery.OrderEmbeddings(rows, 2)
		gt.Error(t, err)
	})

	t.Run("no rows expected yields empty", func(t *testing.T) {
		embeddings, err := bigquery.OrderEmbeddings(nil, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, embeddings).Length(0)
	})
}
