package cmd

import (
	"github.com/hoppxi/fsdim/internal/backend"
	"github.com/hoppxi/fsdim/internal/detector"
	"github.com/hoppxi/fsdim/internal/manager"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Print the current fullscreen window once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := manager.LoadConfig(v)
		if err != nil {
			return err
		}
		b, err := backend.Open(cfg.Backend)
		if err != nil {
			return err
		}
		defer b.Close()

		state, err := detector.New(b, cfg.IgnoreApps, cfg.FocusedOnly, log.Logger).Detect()
		if err != nil {
			return err
		}
		return printYAML(cmd, state)
	},
}
