// ABOUTME: Upload command posting a validated CSV to the backend
// ABOUTME: Validates locally first, then performs the multipart upload

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mappingdesk/skumap/internal/csvcheck"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.csv>",
	Short: "Bulk-upload a mapping CSV file",
	Long: `Validate a mapping CSV file and upload it to the backend.

Exit codes:
  0 - Upload accepted
  1 - File fails validation
  2 - Error (file unreadable, not logged in, connectivity)`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runUpload(ctx, args[0], os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

// runUpload validates and uploads the file, returning exit code
func runUpload(ctx context.Context, path string, w io.Writer) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	check := csvcheck.Validate(string(data))
	if !check.IsValid {
		msg := check.Message
		if len(check.MissingFields) > 0 {
			msg += ": " + strings.Join(check.MissingFields, ", ")
		}
		fmt.Fprintf(w, "✗ %s\n", msg)
		return 1
	}

	session := newSession()
	if !session.LoggedIn() {
		fmt.Fprintln(w, "Error: not logged in. Run 'skumap login' first.")
		return 2
	}

	claims, err := session.Claims()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	sess := session.Session()

	c := newClient(session)
	result, err := c.UploadBulk(ctx, filepath.Base(path), data, sess.Department, claims.Email)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		out := map[string]interface{}{
			"message":        result.Message,
			"rows_processed": result.RowsProcessed,
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "✓ %s (%d rows processed)\n", result.Message, result.RowsProcessed)
	}
	return 0
}
