package cli

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.migrate(ctx); err != nil {
				return err
			}
			a.log.InfoContext(ctx, "migrations applied")
			return nil
		},
	}
}
