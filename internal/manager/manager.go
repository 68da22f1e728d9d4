package manager

import (
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hoppxi/fsdim/internal/screens"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// IPC commands understood by a running daemon.
const (
	CmdStatus = "STATUS"
	CmdStop   = "STOP"
)

var ErrAlreadyRunning = errors.New("another fsdim daemon is already running")

// Status is the daemon snapshot served to STATUS requests.
type Status struct {
	PID           int            `yaml:"pid"`
	Backend       string         `yaml:"backend"`
	Started       time.Time      `yaml:"started"`
	State         string         `yaml:"state"`
	Fullscreen    string         `yaml:"fullscreen"`
	LastRun       string         `yaml:"last_run,omitempty"`
	IdleInhibited bool           `yaml:"idle_inhibited"`
	Screens       []screens.Info `yaml:"screens"`
}

func getSocketPath() string {
	var baseDir string
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		baseDir = runtimeDir
	} else {
		baseDir = os.TempDir()
	}

	socketDir := filepath.Join(baseDir, "fsdim")
	if err := os.MkdirAll(socketDir, 0o700); err != nil {
		return filepath.Join(os.TempDir(), "fsdim-socket.sock")
	}
	return filepath.Join(socketDir, "socket.sock")
}

// Server answers status queries and stop requests from other fsdim
// processes. It only ever reads the last published Status and never touches
// screens.
type Server struct {
	path     string
	listener net.Listener
	logger   zerolog.Logger

	mu     sync.Mutex
	status Status

	stop     chan struct{}
	stopOnce sync.Once
}

// Listen claims the daemon socket. A stale socket left by a dead process is
// replaced; a live one means another daemon owns the displays.
func Listen(logger zerolog.Logger) (*Server, error) {
	path := getSocketPath()
	if conn, err := net.DialTimeout("unix", path, 500*time.Millisecond); err == nil {
		conn.Close()
		return nil, ErrAlreadyRunning
	}
	_ = os.Remove(path)

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	return &Server{
		path:     path,
		listener: listener,
		logger:   logger,
		stop:     make(chan struct{}),
	}, nil
}

func (s *Server) Path() string { return s.path }

// Stopped is closed once a STOP request arrives.
func (s *Server) Stopped() <-chan struct{} { return s.stop }

func (s *Server) Publish(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// Serve accepts connections until Close is called.
func (s *Server) Serve() {
	s.logger.Debug().Str("socket", s.path).Msg("IPC server listening")
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		return
	}

	command := strings.TrimSpace(string(buf[:n]))

	switch command {
	case CmdStop:
		s.logger.Info().Msg("received STOP via IPC")
		_, _ = conn.Write([]byte("OK: stopping"))
		s.stopOnce.Do(func() { close(s.stop) })

	case CmdStatus:
		s.mu.Lock()
		out, err := yaml.Marshal(s.status)
		s.mu.Unlock()
		if err != nil {
			_, _ = conn.Write([]byte("ERR: " + err.Error()))
			return
		}
		_, _ = conn.Write(out)

	default:
		_, _ = conn.Write([]byte("ERR: unknown command"))
	}
}

func (s *Server) Close() error {
	err := s.listener.Close()
	_ = os.Remove(s.path)
	return err
}

func ConnectIPC() (net.Conn, error) {
	return net.DialTimeout("unix", getSocketPath(), 500*time.Millisecond)
}

func SendIPCCommand(cmd string) (string, error) {
	conn, err := ConnectIPC()
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(cmd)); err != nil {
		return "", err
	}

	out, err := io.ReadAll(conn)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
