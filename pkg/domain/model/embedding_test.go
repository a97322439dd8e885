package model_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
	"github.com/secmon-lab/ticketlens/pkg/domain/types"
)

func TestValidateStoreInput(t *testing.T) {
	valid := make(model.EmbeddingVector, model.EmbeddingDimension)

	t.Run("valid input passes", func(t *testing.T) {
		gt.NoError(t, model.ValidateStoreInput(1, valid))
	})

	t.Run("zero ticket ID is rejected", func(t *testing.T) {
		err := model.ValidateStoreInput(0, valid)
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, types.ErrInvalidInput)).True()
	})

	t.Run("negative ticket ID is rejected", func(t *testing.T) {
		err := model.ValidateStoreInput(-5, valid)
		gt.Bool(t, errors.Is(err, types.ErrInvalidInput)).True()
	})

	t.Run("short vector is rejected", func(t *testing.T) {
		err := model.ValidateStoreInput(1, make(model.EmbeddingVector, 10))
		gt.Bool(t, errors.Is(err, types.ErrInvalidInput)).True()
	})

	t.Run("long vector is rejected", func(t *testing.T) {
		err := model.ValidateStoreInput(1, make(model.EmbeddingVector, model.EmbeddingDimension+1))
		gt.Bool(t, errors.Is(err, types.ErrInvalidInput)).True()
	})

	t.Run("nil vector is rejected", func(t *testing.T) {
		err := model.ValidateStoreInput(1, nil)
		gt.Bool(t, errors.Is(err, types.ErrInvalidInput)).True()
	})
}
