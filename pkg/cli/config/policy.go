package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/ticketlens/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// SearchPolicy is the tunable search behavior loaded from a TOML file.
type SearchPolicy struct {
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	DefaultLimit        int     `toml:"default_limit"`
	MaxLimit            int     `toml:"max_limit"`
	MinQueryLength      int     `toml:"min_query_length"`
}

// DefaultSearchPolicy returns the policy applied when no file is given.
func DefaultSearchPolicy() *SearchPolicy {
	return &SearchPolicy{
		SimilarityThreshold: model.DefaultSimilarityThreshold,
		DefaultLimit:        5,
		MaxLimit:            20,
		MinQueryLength:      3,
	}
}

// Validate checks if the SearchPolicy is valid
func (p *SearchPolicy) Validate() error {
	if p.SimilarityThreshold < 0 || p.SimilarityThreshold > 1 {
		return goerr.Wrap(ErrInvalidConfig, "similarity_threshold must be within [0, 1]",
			goerr.V("similarity_threshold", p.SimilarityThreshold))
	}
	if p.DefaultLimit < 1 {
		return goerr.Wrap(ErrInvalidConfig, "default_limit must be positive",
			goerr.V("default_limit", p.DefaultLimit))
	}
	if p.MaxLimit < p.DefaultLimit {
		return goerr.Wrap(ErrInvalidConfig, "max_limit must be at least default_limit",
			goerr.V("default_limit", p.DefaultLimit),
			goerr.V("max_limit", p.MaxLimit))
	}
	if p.MinQueryLength < 1 {
		return goerr.Wrap(ErrInvalidConfig, "min_query_length must be positive",
			goerr.V("min_query_length", p.MinQueryLength))
	}
	return nil
}

// LoadSearchPolicy loads a search policy from a TOML file. Fields omitted
// from the file keep their default values.
func LoadSearchPolicy(path string) (*SearchPolicy, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "search policy file not found", goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read search policy file", goerr.V("path", path))
	}

	policy := DefaultSearchPolicy()
	if err := toml.Unmarshal(data, policy); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML search policy", goerr.V("path", path))
	}

	if err := policy.Validate(); err != nil {
		return nil, goerr.Wrap(err, "search policy validation failed", goerr.V("path", path))
	}

	return policy, nil
}

// Policy holds CLI flags for the search policy file
type Policy struct {
	path string
}

// Flags returns CLI flags for policy configuration
func (p *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "search-policy",
			Usage:       "Path to a TOML search policy file",
			Sources:     cli.EnvVars("TICKETLENS_SEARCH_POLICY"),
			Destination: &p.path,
		},
	}
}

// Configure loads the configured policy file, or the defaults when no
// path is set.
func (p *Policy) Configure() (*SearchPolicy, error) {
	if p.path == "" {
		return DefaultSearchPolicy(), nil
	}
	return LoadSearchPolicy(p.path)
}
