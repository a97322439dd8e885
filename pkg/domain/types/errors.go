package types

import "github.com/m-mizutani/goerr/v2"

// Error taxonomy shared by the embedding pipeline. Callers categorize
// failures with errors.Is against these sentinels.
var (
	// ErrInvalidInput means caller-supplied data violates a precondition
	// (empty text, wrong vector length, non-positive ticket ID). It is
	// always raised before any backend call.
	ErrInvalidInput = goerr.New("invalid input")

	// ErrEmbeddingShape means the embedding backend returned a vector of
	// unexpected length or no vector at all.
	ErrEmbeddingShape = goerr.New("unexpected embedding shape")

	// ErrEmbeddingBackend means the embedding backend call itself failed.
	ErrEmbeddingBackend = goerr.New("embedding backend failure")

	// ErrStoreBackend means a write or read against the embedding store failed.
	ErrStoreBackend = goerr.New("embedding store backend failure")

	// ErrStoreConflict means a non-upsert insert collided with an existing
	// record for the same ticket ID.
	ErrStoreConflict = goerr.New("embedding record already exists")

	// ErrNotFound means the requested record does not exist.
	ErrNotFound = goerr.New("not found")
)
