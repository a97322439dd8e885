package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ticketlens/pkg/cli/config"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o644)).Required()
	return path
}

func TestLoadSearchPolicy(t *testing.T) {
	t.Run("loads a full policy", func(t *testing.T) {
		path := writePolicy(t, `
similarity_threshold = 0.7
default_limit = 3
max_limit = 10
min_query_length = 5
`)
		policy, err := config.LoadSearchPolicy(path)
		gt.NoError(t, err).Required()
		gt.Value(t, policy.SimilarityThreshold).Equal(0.7)
		gt.Value(t, policy.DefaultLimit).Equal(3)
		gt.Value(t, policy.MaxLimit).Equal(10)
		gt.Value(t, policy.MinQueryLength).Equal(5)
	})

	t.Run("omitted fields keep defaults", func(t *testing.T) {
		path := writePolicy(t, `similarity_threshold = 0.6`)
		policy, err := config.LoadSearchPolicy(path)
		gt.NoError(t, err).Required()
		gt.Value(t, policy.SimilarityThreshold).Equal(0.6)
		gt.Value(t, policy.DefaultLimit).Equal(config.DefaultSearchPolicy().DefaultLimit)
		gt.Value(t, policy.MaxLimit).Equal(config.DefaultSearchPolicy().MaxLimit)
	})

	t.Run("missing file maps to not found", func(t *testing.T) {
		_, err := config.LoadSearchPolicy(filepath.Join(t.TempDir(), "missing.toml"))
		gt.Bool(t, errors.Is(err, config.ErrConfigNotFound)).True()
	})

	t.Run("malformed TOML fails", func(t *testing.T) {
		path := writePolicy(t, `similarity_threshold = [broken`)
		_, err := config.LoadSearchPolicy(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("out-of-range threshold is rejected", func(t *testing.T) {
		path := writePolicy(t, `similarity_threshold = 1.5`)
		_, err := config.LoadSearchPolicy(path)
		gt.Bool(t, errors.Is(err, config.ErrInvalidConfig)).True()
	})

	t.Run("max_limit below default_limit is rejected", func(t *testing.T) {
		path := writePolicy(t, `
default_limit = 10
max_limit = 5
`)
		_, err := config.LoadSearchPolicy(path)
		gt.Bool(t, errors.Is(err, config.ErrInvalidConfig)).True()
	})
}

func TestDefaultSearchPolicy(t *testing.T) {
	policy := config.DefaultSearchPolicy()
	gt.NoError(t, policy.Validate())
	gt.Value(t, policy.SimilarityThreshold).Equal(0.5)
	gt.Value(t, policy.DefaultLimit).Equal(5)
	gt.Value(t, policy.MaxLimit).Equal(20)
	gt.Value(t, policy.MinQueryLength).Equal(3)
}
