// ABOUTME: Root command for the skumap CLI
// ABOUTME: Handles global flags, configuration, and shared construction

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mappingdesk/skumap/internal/auth"
	"github.com/mappingdesk/skumap/internal/client"
	"github.com/mappingdesk/skumap/internal/config"
	"github.com/mappingdesk/skumap/internal/logger"
	"github.com/mappingdesk/skumap/internal/token"
)

var (
	apiURL     string
	jsonOutput bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "skumap",
	Short: "Console for the SKU mapping reconciliation backend",
	Long: `skumap is a terminal client for the SKU mapping reconciliation backend.

It provides an interactive dashboard (skumap ui) plus scriptable commands for
CI pipelines: validating upload files, checking mapping KPIs, and bulk uploads.

Environment Variables:
  SKUMAP_API_URL  Backend API URL (default: http://localhost:8000)`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(os.Stderr)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides SKUMAP_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// GetAPIURL returns the API URL from flag, env, or configuration
// (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv("SKUMAP_API_URL"); envURL != "" {
		return envURL
	}
	if cfg, err := config.Load(); err == nil {
		return cfg.BaseURL(config.DetectLocation())
	}
	return config.DefaultAPIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// newSession builds the session manager over the persisted token store
// and restores any prior session
func newSession() *auth.Manager {
	store := token.NewStore(token.DefaultConfigDir())
	session := auth.NewManager(GetAPIURL(), store)
	session.Restore()
	return session
}

// newClient builds an API client bound to the session
func newClient(session *auth.Manager) *client.Client {
	return client.New(GetAPIURL(), session)
}
