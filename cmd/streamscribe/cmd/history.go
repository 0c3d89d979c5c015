package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jwulff/streamscribe/internal/archive"
	"github.com/spf13/cobra"
)

var (
	flagHistoryLimit int
	flagHistoryKind  string
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Show archived sessions",
	Long:  "Lists archived dashboard runs. With a session ID (or 'latest'), prints that run's transcript or topics.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "sessions to list (0 for all)")
	historyCmd.Flags().StringVarP(&flagHistoryKind, "kind", "k", string(archive.KindTranscript), "entries to print: transcript, fine or major")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := archive.Open(cfg.ArchivePath)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		sessions, err := store.Sessions(flagHistoryLimit)
		if err != nil {
			return err
		}
		fmt.Fprint(out, formatSessions(sessions))
		return nil
	}

	kind, err := parseKind(flagHistoryKind)
	if err != nil {
		return err
	}
	id := args[0]
	if id == "latest" {
		latest, err := store.LatestSession()
		if err != nil {
			return err
		}
		if latest == nil {
			return fmt.Errorf("archive is empty")
		}
		id = latest.ID
	}
	entries, err := store.EntriesForSession(id, kind)
	if err != nil {
		return err
	}
	return writeEntries(out, entries)
}

func parseKind(s string) (archive.Kind, error) {
	switch k := archive.Kind(strings.ToLower(s)); k {
	case archive.KindTranscript, archive.KindFine, archive.KindMajor:
		return k, nil
	}
	return "", fmt.Errorf("unknown kind %q (want transcript, fine or major)", s)
}

func formatSessions(sessions []archive.Session) string {
	if len(sessions) == 0 {
		return "No archived sessions.\n"
	}
	var b strings.Builder
	for _, s := range sessions {
		fmt.Fprintf(&b, "%s │ %s │ %4d entries │ %s\n",
			s.ID, s.StartedAt.Format("2006-01-02 15:04"), s.EntryCount, s.ServerURL)
	}
	return b.String()
}

// writeEntries prints entries in the same form the dashboard exports them.
func writeEntries(w io.Writer, entries []archive.Entry) error {
	for _, e := range entries {
		var line string
		if e.Kind == archive.KindTranscript {
			line = fmt.Sprintf("[%s] %s\n", e.Stamp, e.Text)
		} else {
			line = fmt.Sprintf("%s %s\n", e.Stamp, e.Text)
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
