package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute creates the root command tree and runs it.
func Execute(version, commit string) error {
	return newRootCmd(version, commit).Execute()
}

func newRootCmd(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Rider operations backend",
		Long: `Dispatch runs the rider operations backend: a two-tier admin hierarchy,
an append-only rider presence log, a wait-ordered dispatch queue, and an
audited impersonation broker. Configuration comes from the environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newVersionCmd(version, commit))

	return cmd
}

func newVersionCmd(version, commit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dispatch %s (%s)\n", version, commit)
		},
	}
}
