package node

import (
	"fmt"
	"strconv"

	"fleetml/cmd/fleetctl/cmdutil"
	"fleetml/cmd/fleetctl/ui"
	"fleetml/internal/rpc/pb"

	"github.com/spf13/cobra"
)

func listCmd(serverFlag *string) *cobra.Command {
	var runID uint64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List online nodes (empty if the run does not exist)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, driver, _, err := cmdutil.Dial(ctx, cmdutil.ServerAddress(*serverFlag))
			if err != nil {
				return err
			}
			defer conn.Close()

			resp, err := driver.GetNodes(ctx, &pb.GetNodesRequest{RunID: runID})
			if err != nil {
				return err
			}

			if resp.ClockStatus.Phase == "unhealthy_offset" {
				fmt.Println(ui.ErrorMsg("server clock drifted by %dms as of %s", resp.ClockStatus.OffsetMs, resp.ClockStatus.CheckedAt))
			}

			if len(resp.NodeIDs) == 0 {
				fmt.Println(ui.Muted("no online nodes (or run not found)"))
				return nil
			}

			rows := make([][]string, len(resp.NodeIDs))
			for i, id := range resp.NodeIDs {
				rows[i] = []string{strconv.Itoa(i + 1), strconv.FormatUint(id, 10)}
			}
			fmt.Println(ui.Table([]string{"#", "Node ID"}, rows))
			return nil
		},
	}

	cmd.Flags().Uint64Var(&runID, "run-id", 0, "Run to list nodes for")
	return cmd
}
