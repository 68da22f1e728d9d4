package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/hoppxi/fsdim/internal/backend"
	"github.com/hoppxi/fsdim/internal/manager"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var Version = "0.1.0"

var v = manager.NewViper()

var rootCmd = &cobra.Command{
	Use:     "fsdim",
	Version: Version,
	Short:   "Dim external displays while a fullscreen app is running",
	Long: "fsdim watches for fullscreen windows and fades every other external display " +
		"to black over DDC/CI, restoring them when the fullscreen window goes away.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		setupLogging(v.GetBool(manager.KeyVerbose))
		return nil
	},
	RunE: runDaemon,
}

func setupLogging(verbose bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
}

// printYAML writes out to the command's output.
func printYAML(cmd *cobra.Command, out any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(out)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSlice(manager.KeyIgnoreDisplay, nil, "Display names to leave alone (repeatable)")
	flags.StringSlice(manager.KeyIgnoreApp, nil, "Window name substrings that never trigger dimming (repeatable)")
	flags.Bool(manager.KeyFocusedOnly, false, "Only consider the focused window")
	flags.Int(manager.KeyFadeTime, manager.DefaultFadeTime, "Fade duration in milliseconds")
	flags.Int(manager.KeyPollInterval, manager.DefaultPollInterval, "Fullscreen poll interval in milliseconds")
	flags.Int(manager.KeyFadeInterval, manager.DefaultFadeInterval, "Time between fade steps in milliseconds")
	flags.StringSlice(manager.KeyOverride, nil, "Default brightness override as NAME=VALUE (repeatable)")
	flags.String(manager.KeyBackend, backend.Auto, "Display server backend: auto, x11 or hyprland")
	flags.Bool(manager.KeyInhibitIdle, false, "Inhibit the screensaver while displays are dimmed")
	flags.Bool(manager.KeyNotify, false, "Send a desktop notification on dim and restore")
	flags.BoolP(manager.KeyVerbose, "v", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(screensCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(brightnessCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(killCmd)
}
