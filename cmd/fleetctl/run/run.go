// Package run holds fleetctl's "run" subcommand tree: inspecting a
// run's state and pushing task instructions into it.
package run

import "github.com/spf13/cobra"

// Cmd returns the "run" command group.
func Cmd(serverFlag *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Inspect runs and push task instructions",
	}
	cmd.AddCommand(getCmd(serverFlag))
	cmd.AddCommand(pushCmd(serverFlag))
	return cmd
}
