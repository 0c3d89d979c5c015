// Package log writes diagnostics to a file. The terminal belongs to the
// dashboard, so nothing here prints to stdout or stderr.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// FileName is the diagnostics file inside the log directory.
const FileName = "streamscribe.log"

var (
	diagLog  zerolog.Logger
	diagFile *os.File
	logMu    sync.Mutex
	logReady bool
	debug    bool
	dir      string
)

// ResolveDir picks the log directory: flag, then STREAMSCRIBE_LOG_DIR, then
// <home>/logs.
func ResolveDir(flagPath, home string) (string, error) {
	if flagPath != "" {
		return absolute(flagPath)
	}
	if envPath := os.Getenv("STREAMSCRIBE_LOG_DIR"); envPath != "" {
		return absolute(envPath)
	}
	if home == "" {
		return "", fmt.Errorf("resolve log dir: no data directory")
	}
	return filepath.Join(home, "logs"), nil
}

func absolute(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

// SetDebug enables Debugf output.
func SetDebug(on bool) {
	debug = on
}

// Init opens the diagnostics file. Logging calls made before Init are dropped.
func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	diagFile = f

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	diagLog = zerolog.New(consoleWriter).Level(level).With().Timestamp().Int("pid", os.Getpid()).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Debugf(format string, args ...any) {
	if logReady && debug {
		diagLog.Debug().Msg(fmt.Sprintf(format, args...))
	}
}

// Frame records one transport frame and whether it was routed.
func Frame(name string, gen uint64, accepted bool) {
	if !logReady {
		return
	}
	diagLog.Debug().
		Str("event", name).
		Uint64("gen", gen).
		Bool("accepted", accepted).
		Msg("frame")
}

// StateChange records a connection transition.
func StateChange(from, to, cause string) {
	if !logReady {
		return
	}
	ev := diagLog.Info().
		Str("from", from).
		Str("to", to)
	if cause != "" {
		ev = ev.Str("cause", cause)
	}
	ev.Msg("connection")
}

// Trace mirrors a debug console record at the matching level.
func Trace(severity, message string) {
	if !logReady {
		return
	}
	switch severity {
	case "error":
		diagLog.Error().Str("console", severity).Msg(message)
	default:
		diagLog.Info().Str("console", severity).Msg(message)
	}
}
