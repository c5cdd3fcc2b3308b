// Command fleetctl is the operator CLI for the coordination fabric: it
// pushes task instructions into a run and inspects run/node state over
// the Driver service. Structured like ployz's cmd/ployz root
// (cobra command tree, PersistentPreRun for color-profile setup).
package main

import (
	"fmt"
	"os"

	"fleetml/cmd/fleetctl/node"
	"fleetml/cmd/fleetctl/run"
	"fleetml/cmd/fleetctl/ui"
	"fleetml/internal/support/buildinfo"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Println(ui.ErrorMsg("%v", err))
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var serverFlag string

	cmd := &cobra.Command{
		Use:     "fleetctl",
		Short:   "Operator CLI for the fleetml coordination fabric",
		Version: buildinfo.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.ConfigureColorProfile()
		},
	}

	cmd.PersistentFlags().StringVar(&serverFlag, "server", "", "SuperLink address (default 127.0.0.1:9092, or $FLEETML_SERVER)")
	cmd.AddCommand(run.Cmd(&serverFlag))
	cmd.AddCommand(node.Cmd(&serverFlag))
	return cmd
}
