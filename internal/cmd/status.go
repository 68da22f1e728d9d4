package cmd

import (
	"fmt"

	"github.com/hoppxi/fsdim/internal/manager"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the running daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		response, err := manager.SendIPCCommand(manager.CmdStatus)
		if err != nil {
			return fmt.Errorf("%w (is the daemon running?)", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), response)
		return nil
	},
}
