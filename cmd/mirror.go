package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/portfolio/internal/config"
	"github.com/naka-gawa/portfolio/internal/usecase"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Copies projects and tutorials into the database",
	Long: `Aggregates the user's projects and tutorials and replaces the mirrored copy
in the database selected by DB_DRIVER and DB_DSN. Nothing is written when
GitHub cannot be reached.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		user, _ := cmd.Flags().GetString("user")
		cfg, err := config.Load(ctx, config.WithUsername(user))
		if err != nil {
			return err
		}

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.openStore(ctx)
		if err != nil {
			return err
		}

		report, err := usecase.NewMirror(a.projects, a.tutorials, st, logger).Refresh(ctx, cfg.GitHub.Username)
		if err != nil {
			return err
		}

		jsonData, err := json.Marshal(report)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal report to JSON")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mirrorCmd)
	mirrorCmd.Flags().StringP("user", "u", "", "GitHub user name (defaults to GITHUB_USERNAME)")
}
