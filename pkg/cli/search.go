package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/ticketlens/pkg/cli/config"
	"github.com/secmon-lab/ticketlens/pkg/service/embedding"
	"github.com/secmon-lab/ticketlens/pkg/usecase"
	"github.com/secmon-lab/ticketlens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdSearch() *cli.Command {
	var limit int
	var asJSON bool
	var repoCfg config.Repository
	var embedderCfg config.Embedder
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of results",
			Value:       5,
			Destination: &limit,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Emit results as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, embedderCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Search tickets similar to the given query text",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return goerr.New("query text is required")
			}

			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load search policy")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			embedder, err := embedderCfg.Configure(ctx, repo)
			if err != nil {
				return goerr.Wrap(err, "failed to configure embedding backend")
			}

			generator, err := embedding.New(embedder)
			if err != nil {
				return goerr.Wrap(err, "failed to create embedding generator")
			}

			uc := usecase.New(repo, generator,
				usecase.WithThreshold(policy.SimilarityThreshold),
			)

			results, err := uc.SearchSimilarTickets(ctx, query, limit)
			if err != nil {
				return goerr.Wrap(err, "search failed")
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			if len(results) == 0 {
				color.Yellow("No similar tickets found")
				return nil
			}

			title := color.New(color.FgCyan, color.Bold)
			score := color.New(color.FgGreen)
			for _, res := range results {
				title.Printf("Case #%d: %s\n", res.TicketID, res.Subject)
				score.Printf("  similarity: %.3f\n", res.Similarity)
				fmt.Printf("  issue: %s\n", res.Description)
				if res.Resolution != "" {
					fmt.Printf("  resolution: %s\n", res.Resolution)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
