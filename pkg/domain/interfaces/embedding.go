package interfaces

import "context"

// EmbeddingModel is the minimal capability needed to obtain embedding
// vectors for texts. gollem.LLMClient satisfies it directly; the BigQuery
// client implements it through ML.GENERATE_EMBEDDING.
type EmbeddingModel interface {
	GenerateEmbedding(ctx context.Context, dimension int, texts []string) ([][]float64, error)
}
