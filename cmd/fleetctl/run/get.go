package run

import (
	"fmt"
	"strconv"

	"fleetml/cmd/fleetctl/cmdutil"
	"fleetml/cmd/fleetctl/ui"
	"fleetml/internal/rpc/pb"

	"github.com/spf13/cobra"
)

func getCmd(serverFlag *string) *cobra.Command {
	var runID uint64

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a run's current state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, driver, _, err := cmdutil.Dial(ctx, cmdutil.ServerAddress(*serverFlag))
			if err != nil {
				return err
			}
			defer conn.Close()

			resp, err := driver.GetRun(ctx, &pb.GetRunRequest{RunID: runID})
			if err != nil {
				return err
			}
			if !resp.Found {
				fmt.Println(ui.ErrorMsg("run %d not found", runID))
				return nil
			}

			r := resp.Run
			fmt.Print(ui.KeyValues("",
				ui.KV("Run ID", strconv.FormatUint(r.RunID, 10)),
				ui.KV("Fab ID", r.FabID),
				ui.KV("Fab version", r.FabVersion),
				ui.KV("Fab hash", r.FabHash),
				ui.KV("Pending at", orDash(r.PendingAt)),
				ui.KV("Starting at", orDash(r.StartingAt)),
				ui.KV("Running at", orDash(r.RunningAt)),
				ui.KV("Finished at", orDash(r.FinishedAt)),
			))
			return nil
		},
	}

	cmd.Flags().Uint64Var(&runID, "run-id", 0, "Run to fetch")
	_ = cmd.MarkFlagRequired("run-id")
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
