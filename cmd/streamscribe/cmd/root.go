package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jwulff/streamscribe/internal/app"
	"github.com/jwulff/streamscribe/internal/archive"
	"github.com/jwulff/streamscribe/internal/config"
	"github.com/jwulff/streamscribe/internal/conn"
	"github.com/jwulff/streamscribe/internal/debuglog"
	"github.com/jwulff/streamscribe/internal/export"
	"github.com/jwulff/streamscribe/internal/log"
	"github.com/jwulff/streamscribe/internal/prefs"
	"github.com/jwulff/streamscribe/internal/session"
	"github.com/jwulff/streamscribe/internal/socketio"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	flagServer    string
	flagHome      string
	flagLogDir    string
	flagAttempts  int
	flagDelay     time.Duration
	flagTimeout   time.Duration
	flagNoArchive bool
	flagDebug     bool
)

var rootCmd = &cobra.Command{
	Use:           "streamscribe",
	Short:         "Live transcript and topic dashboard",
	Long:          "Attaches to a transcription server, follows a livestream's transcript and topic changes, and exports them.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDashboard,
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagHome, "home", "", "data directory (default ~/.streamscribe)")
	pf.BoolVar(&flagDebug, "debug", false, "verbose diagnostics")

	f := rootCmd.Flags()
	f.StringVarP(&flagServer, "server", "s", config.DefaultServerURL, "transcription server URL")
	f.StringVar(&flagLogDir, "log-dir", "", "diagnostics directory")
	f.IntVar(&flagAttempts, "reconnect-attempts", config.DefaultMaxReconnectAttempts, "transport reconnection attempts")
	f.DurationVar(&flagDelay, "reconnect-delay", config.DefaultReconnectDelay, "delay between reconnection attempts")
	f.DurationVar(&flagTimeout, "timeout", config.DefaultConnectTimeout, "connection attempt timeout")
	f.BoolVar(&flagNoArchive, "no-archive", false, "do not record received entries")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(prefsCmd)
}

// loadConfig layers flags that were set explicitly over env and defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("home") {
		cfg.SetDataDir(flagHome)
	}
	if flags.Changed("debug") {
		cfg.Debug = flagDebug
	}
	if flags.Changed("server") {
		cfg.ServerURL = flagServer
	}
	if flags.Changed("log-dir") {
		cfg.LogDir = flagLogDir
	}
	if flags.Changed("reconnect-attempts") {
		cfg.MaxReconnectAttempts = flagAttempts
	}
	if flags.Changed("reconnect-delay") {
		cfg.ReconnectDelay = flagDelay
	}
	if flags.Changed("timeout") {
		cfg.ConnectTimeout = flagTimeout
	}
	if flags.Changed("no-archive") {
		cfg.Archive = !flagNoArchive
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return cfg, nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the dashboard needs a terminal; use 'streamscribe history' for plain output")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logDir, err := log.ResolveDir(cfg.LogDir, cfg.DataDir)
	if err != nil {
		return err
	}
	log.SetDir(logDir)
	log.SetDebug(cfg.Debug)
	if err := log.Init(); err != nil {
		return fmt.Errorf("init log: %w", err)
	}
	defer log.Close()
	log.Infof("starting: server=%s attempts=%d delay=%s timeout=%s",
		cfg.ServerURL, cfg.MaxReconnectAttempts, cfg.ReconnectDelay, cfg.ConnectTimeout)

	opts := app.Options{ServerURL: cfg.ServerURL}

	if store, err := prefs.Open(cfg.PrefsPath); err != nil {
		log.Warnf("preferences unavailable: %v", err)
	} else {
		defer store.Close()
		opts.Prefs = store
	}

	if cfg.Archive {
		if store, err := archive.Open(cfg.ArchivePath); err != nil {
			log.Warnf("archive unavailable: %v", err)
		} else {
			defer store.Close()
			id := uuid.NewString()
			if err := store.BeginSession(id, cfg.ServerURL, time.Now()); err != nil {
				log.Warnf("archive session: %v", err)
			} else {
				opts.Archive = store
				opts.ArchiveID = id
				log.Infof("archiving as session %s", id)
			}
		}
	}

	sess := session.New(debuglog.WithMirror(func(r debuglog.Record) {
		log.Trace(r.Severity.String(), r.Message)
	}))
	mgr := conn.NewManager(socketio.NewDialer(), cfg.Options(), sess)
	defer mgr.Close()

	opts.Session = sess
	opts.Manager = mgr
	opts.Exporter = export.New(export.SystemClipboard{}, cfg.ExportDir)

	p := tea.NewProgram(app.New(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	log.Info("exiting")
	return nil
}
