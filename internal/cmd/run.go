package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hoppxi/fsdim/internal/fade"
	"github.com/hoppxi/fsdim/internal/manager"
	"github.com/hoppxi/fsdim/internal/subscribe"
	"github.com/hoppxi/fsdim/internal/watchers"
	"github.com/hoppxi/fsdim/pkg/ddc"
	"github.com/hoppxi/fsdim/pkg/operation"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the dimming daemon in the foreground",
	RunE:  runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := manager.LoadConfig(v)
	if err != nil {
		return err
	}

	srv, err := manager.Listen(log.Logger)
	if err != nil {
		return err
	}
	session, err := manager.Open(cfg, log.Logger)
	if err != nil {
		srv.Close()
		return err
	}
	defer session.Close()

	session.Server = srv
	go srv.Serve()

	if cfg.InhibitIdle {
		session.Inhibitor = operation.NewIdleInhibitor("fsdim")
	}
	if cfg.Notify {
		session.Notifier = operation.NewNotifier("fsdim")
	}

	bus, err := watchers.NewBusWatcher(ddc.DevRoot, log.Logger)
	if err != nil {
		log.Debug().Err(err).Msg("bus watcher unavailable")
	} else {
		defer bus.Close()
	}

	session.Publish("")

	stop := make(chan struct{})
	hotplug, err := subscribe.HotplugEvents(stop)
	if err != nil {
		log.Debug().Err(err).Msg("hotplug events unavailable")
	}
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			log.Info().Stringer("signal", sig).Msg("shutting down")
		case <-srv.Stopped():
		}
		close(stop)
	}()

	w := &watchers.FullscreenWatcher{
		Detector:   session.Detector,
		Controller: session.Controller,
		Clock:      fade.SystemClock,
		Interval:   cfg.PollInterval,
		Bus:        bus,
		Hotplug:    hotplug,
		OnFade:     session.AfterFade,
		Logger:     log.Logger,
	}
	log.Info().
		Dur("poll", cfg.PollInterval).
		Dur("fade", cfg.FadeTime).
		Bool("focused_only", cfg.FocusedOnly).
		Msg("watching for fullscreen windows")

	if err := w.Run(stop); err != nil {
		log.Error().Err(err).Msg("fade failed, displays left at their last brightness")
		return err
	}
	return nil
}
