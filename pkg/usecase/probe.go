package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// ProbeResult reports the outcome of a connectivity check against the
// store and the embedding backend.
type ProbeResult struct {
	StoreOK   bool `json:"store_ok"`
	ModelOK   bool `json:"model_ok"`
	Dimension int  `json:"embedding_dimension,omitempty"`
}

// TestConnection pings the repository backend and requests one test
// embedding, reporting the observed dimension.
func (uc *UseCases) TestConnection(ctx context.Context) (*ProbeResult, error) {
	result := &ProbeResult{}

	if err := uc.repo.Ping(ctx); err != nil {
		return result, goerr.Wrap(err, "store connectivity check failed")
	}
	result.StoreOK = true

	vec, err := uc.generator.Generate(ctx, "Test connection")
	if err != nil {
		return result, goerr.Wrap(err, "embedding model check failed")
	}
	result.ModelOK = true
	result.Dimension = len(vec)

	return result, nil
}
