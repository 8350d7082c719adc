// ABOUTME: UI command launching the interactive TUI dashboard
// ABOUTME: Wires the session manager, API client, and debug logging

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mappingdesk/skumap/internal/config"
	"github.com/mappingdesk/skumap/internal/logger"
	"github.com/mappingdesk/skumap/internal/tui"
	"github.com/mappingdesk/skumap/internal/tui/debuglog"
	"github.com/mappingdesk/skumap/internal/tui/recentfiles"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive mapping dashboard",
	Run: func(cmd *cobra.Command, args []string) {
		debuglog.Init(recentfiles.DefaultConfigDir())
		defer debuglog.Close()

		// Redirect slog away from the terminal while the alt screen is up
		logger.Init(debuglog.Writer())

		refreshInterval := 14 * time.Minute
		if cfg, err := config.Load(); err == nil {
			refreshInterval = time.Duration(cfg.RefreshInterval) * time.Second
		}

		session := newSession()
		apiClient := newClient(session)

		if err := tui.Run(session, apiClient, refreshInterval); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
