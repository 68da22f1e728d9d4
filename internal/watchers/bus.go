package watchers

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// BusWatcher reports i2c buses that come and go after startup. The screen
// set is fixed for the life of the daemon, so changes are only logged.
type BusWatcher struct {
	watcher *fsnotify.Watcher
	logger  zerolog.Logger
}

func NewBusWatcher(dir string, logger zerolog.Logger) (*BusWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}
	return &BusWatcher{watcher: watcher, logger: logger}, nil
}

// Check drains pending events without blocking and returns how many bus
// changes it saw.
func (b *BusWatcher) Check() int {
	changes := 0
	for {
		select {
		case event, ok := <-b.watcher.Events:
			if !ok {
				return changes
			}
			name := filepath.Base(event.Name)
			if !strings.HasPrefix(name, "i2c-") {
				continue
			}
			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				b.logger.Warn().Str("bus", name).Msg("i2c bus appeared, restart fsdim to control it")
				changes++
			case event.Op&fsnotify.Remove == fsnotify.Remove:
				b.logger.Warn().Str("bus", name).Msg("i2c bus disappeared, its screen can no longer be controlled")
				changes++
			}
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return changes
			}
			b.logger.Debug().Err(err).Msg("bus watcher")
		default:
			return changes
		}
	}
}

func (b *BusWatcher) Close() error {
	return b.watcher.Close()
}
