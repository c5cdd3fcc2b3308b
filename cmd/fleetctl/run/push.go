package run

import (
	"fmt"
	"os"

	"fleetml/cmd/fleetctl/cmdutil"
	"fleetml/cmd/fleetctl/ui"
	"fleetml/internal/rpc/pb"

	"github.com/spf13/cobra"
)

func pushCmd(serverFlag *string) *cobra.Command {
	var runID uint64
	var consumerNodeID uint64
	var groupID string
	var taskType string
	var ttl float64
	var messageFile string

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push a task instruction into a run",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var message []byte
			if messageFile != "" {
				data, err := os.ReadFile(messageFile)
				if err != nil {
					return fmt.Errorf("read message file %s: %w", messageFile, err)
				}
				message = data
			}

			conn, driver, _, err := cmdutil.Dial(ctx, cmdutil.ServerAddress(*serverFlag))
			if err != nil {
				return err
			}
			defer conn.Close()

			req := &pb.PushTaskInsRequest{
				TaskInsList: []pb.TaskMsg{{
					GroupID:   groupID,
					RunID:     runID,
					Producer:  pb.AddressMsg{Anonymous: true},
					Consumer:  pb.AddressMsg{Anonymous: consumerNodeID == 0, NodeID: consumerNodeID},
					TTL:       ttl,
					TaskType:  taskType,
					RecordSet: message,
				}},
			}

			resp, err := driver.PushTaskIns(ctx, req)
			if err != nil {
				return err
			}
			if len(resp.TaskIDs) == 0 || resp.TaskIDs[0] == "" {
				fmt.Println(ui.ErrorMsg("push rejected"))
				return nil
			}
			fmt.Println(ui.SuccessMsg("pushed task %s", resp.TaskIDs[0]))
			return nil
		},
	}

	cmd.Flags().Uint64Var(&runID, "run-id", 0, "Run to push into")
	cmd.Flags().Uint64Var(&consumerNodeID, "consumer-node-id", 0, "Target node (0 means anonymous/any)")
	cmd.Flags().StringVar(&groupID, "group-id", "", "Group ID correlating this task with its siblings")
	cmd.Flags().StringVar(&taskType, "task-type", "", "Application-defined task type")
	cmd.Flags().Float64Var(&ttl, "ttl", 3600, "Time to live in seconds")
	cmd.Flags().StringVar(&messageFile, "message-file", "", "Path to the recordset payload")
	_ = cmd.MarkFlagRequired("run-id")
	return cmd
}
