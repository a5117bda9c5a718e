package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/lib"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "migrate",
		Args:    cobra.NoArgs,
		Aliases: []string{"m"},
		Short:   "Create indexes or tables for the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			logger, err := lib.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			repo, err := openRepository(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			logger.Info("migration complete", zap.String("driver", cfg.DBDriver))
			return repo.Close(context.Background())
		},
	}
}
