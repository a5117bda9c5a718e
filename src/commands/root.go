// Package commands is the friendlynk command line.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/theleywin/friendlynk/src/lib"
)

type rootOptions struct {
	configPath string
}

func (o *rootOptions) load() (*lib.Config, error) {
	return lib.LoadConfig(o.configPath)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "friendlynk",
		Short:        "FriendLynk social network API",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "optional YAML config file")

	rootCmd.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
	)

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
