package cmd

import (
	"fmt"
	"strconv"

	"github.com/jwulff/streamscribe/internal/prefs"
	"github.com/spf13/cobra"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs [api-key|dark-theme] [value]",
	Short: "Show or set preferences",
	Long:  "Without arguments, shows stored preferences. With a name and value, stores it. 'prefs api-key -' forgets the key.",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runPrefs,
}

func runPrefs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if len(args) < 2 {
		key, err := store.APIKey()
		if err != nil {
			return err
		}
		dark, err := store.DarkTheme()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "api-key:    %s\n", maskKey(key))
		fmt.Fprintf(out, "dark-theme: %t\n", dark)
		return nil
	}

	switch args[0] {
	case "api-key":
		if args[1] == "-" {
			return store.ClearAPIKey()
		}
		return store.SetAPIKey(args[1])
	case "dark-theme":
		dark, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("dark-theme: %w", err)
		}
		return store.SetDarkTheme(dark)
	}
	return fmt.Errorf("unknown preference %q", args[0])
}

// maskKey shows only the last four characters of a stored key.
func maskKey(key string) string {
	if key == "" {
		return "(none)"
	}
	runes := []rune(key)
	if len(runes) <= 4 {
		return "****"
	}
	return "****" + string(runes[len(runes)-4:])
}
