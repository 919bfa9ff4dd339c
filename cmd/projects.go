package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/portfolio/internal/catalog"
	"github.com/naka-gawa/portfolio/internal/config"
	"github.com/naka-gawa/portfolio/internal/domain"
	"github.com/naka-gawa/portfolio/internal/usecase"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Aggregates a GitHub user's projects and outputs them as JSON",
	Long: `Lists the user's own repositories, looks up the languages of each one
concurrently and prints the joined result in JSON format. Forks are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		user, _ := cmd.Flags().GetString("user")
		curated, _ := cmd.Flags().GetBool("curated")
		page, _ := cmd.Flags().GetInt("page")
		if page < 0 {
			return goerr.New("--page must not be negative", goerr.V("page", page))
		}

		cfg, err := config.Load(ctx, config.WithUsername(user))
		if err != nil {
			return err
		}

		var result *domain.AggregateResult
		if curated {
			c, err := catalog.Load(cfg.Server.DataFile)
			if err != nil {
				return err
			}
			result = c.Projects()
		} else {
			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if result, err = a.projects.Aggregate(ctx, cfg.GitHub.Username); err != nil {
				return goerr.Wrap(err, "failed to aggregate projects", goerr.V("user", cfg.GitHub.Username))
			}
		}
		if page > 0 {
			result = usecase.Paginate(result, page, cfg.Server.PageSize)
		}

		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return goerr.Wrap(err, "failed to marshal results to JSON")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.Flags().StringP("user", "u", "", "GitHub user name (defaults to GITHUB_USERNAME)")
	projectsCmd.Flags().Bool("curated", false, "Print the curated projects of the data file instead")
	projectsCmd.Flags().Int("page", 0, "Print only this page of the result (1-based, 0 for all)")
}
