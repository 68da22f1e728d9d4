package cmd

import (
	"github.com/hoppxi/fsdim/internal/manager"
	"github.com/hoppxi/fsdim/internal/screens"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var screensCmd = &cobra.Command{
	Use:   "screens",
	Short: "List controllable displays and where they are placed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := manager.LoadConfig(v)
		if err != nil {
			return err
		}
		session, err := manager.Open(cfg, log.Logger)
		if err != nil {
			return err
		}
		defer session.Close()

		out := make([]screens.Info, 0, len(session.Screens))
		for _, s := range session.Screens {
			out = append(out, s.Info())
		}
		return printYAML(cmd, out)
	},
}
