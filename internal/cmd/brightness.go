package cmd

import (
	"fmt"
	"strconv"

	"github.com/hoppxi/fsdim/internal/manager"
	"github.com/hoppxi/fsdim/internal/screens"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var brightnessCmd = &cobra.Command{
	Use:   "brightness NAME VALUE",
	Short: "Set the brightness of one display",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		value, err := strconv.ParseUint(args[1], 10, 16)
		if err != nil {
			return fmt.Errorf("brightness %q: %w", args[1], err)
		}

		cfg, err := manager.LoadConfig(v)
		if err != nil {
			return err
		}
		handles, err := manager.Handles()
		if err != nil {
			return err
		}
		list := screens.NewRegistry(cfg.Overrides, log.Logger).Build(handles, nil)
		defer func() {
			for _, s := range list {
				_ = s.Close()
			}
		}()

		for _, s := range list {
			if s.Name != name {
				continue
			}
			if uint16(value) > s.MaxBrightness {
				return fmt.Errorf("%s: brightness %d above maximum %d", name, value, s.MaxBrightness)
			}
			if err := s.SetBrightness(uint16(value)); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			log.Info().Str("screen", name).Uint64("value", value).Msg("brightness set")
			return nil
		}
		return fmt.Errorf("no controllable display named %q", name)
	},
}
