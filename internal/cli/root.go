// Package cli wires configuration, storage and services into the shipfeed
// command line.
package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

// NewRootCmd returns the shipfeed command tree. Configuration comes from the
// environment and an optional .env file.
func NewRootCmd(v string) *cobra.Command {
	version = v

	root := &cobra.Command{
		Use:           "shipfeed",
		Short:         "Changelog publishing API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("shipfeed %s\n", version)
		},
	}
}
