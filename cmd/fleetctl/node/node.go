// Package node holds fleetctl's "node" subcommand tree. Adapted from
// ployz's cmd/ployz/node package (a cobra.Command per verb,
// sharing a connection helper and ui table rendering).
package node

import "github.com/spf13/cobra"

// Cmd returns the "node" command group.
func Cmd(serverFlag *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "node",
		Aliases: []string{"nodes"},
		Short:   "Inspect online nodes",
	}
	cmd.AddCommand(listCmd(serverFlag))
	return cmd
}
