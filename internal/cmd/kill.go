package cmd

import (
	"fmt"
	"strings"

	"github.com/hoppxi/fsdim/internal/manager"
	"github.com/spf13/cobra"
)

var killCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the running daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		response, err := manager.SendIPCCommand(manager.CmdStop)
		if err != nil {
			return fmt.Errorf("%w (is the daemon running?)", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Server response: %s\n", response)

		if strings.HasPrefix(response, "OK") {
			fmt.Fprintln(cmd.OutOrStdout(), "fsdim daemon stopping.")
		}
		return nil
	},
}
