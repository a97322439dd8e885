package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
)

func TestSimilarityFromDistance(t *testing.T) {
	t.Run("identical vectors score 1", func(t *testing.T) {
		gt.Value(t, model.SimilarityFromDistance(0)).Equal(1.0)
	})

	t.Run("orthogonal vectors score 0.5", func(t *testing.T) {
		gt.Value(t, model.SimilarityFromDistance(1)).Equal(0.5)
	})

	t.Run("opposite vectors score 0", func(t *testing.T) {
		gt.Value(t, model.SimilarityFromDistance(2)).Equal(0.0)
	})

	t.Run("out-of-range distances clamp into [0, 1]", func(t *testing.T) {
		gt.Value(t, model.SimilarityFromDistance(-0.1)).Equal(1.0)
		gt.Value(t, model.SimilarityFromDistance(2.5)).Equal(0.0)
	})

	t.Run("mapping is monotone decreasing", func(t *testing.T) {
		prev := model.SimilarityFromDistance(0)
		for _, d := range []float64{0.2, 0.5, 0.9, 1.3, 1.8, 2.0} {
			cur := model.SimilarityFromDistance(d)
			gt.Bool(t, cur < prev).True()
			prev = cur
		}
	})
}
