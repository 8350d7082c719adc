// ABOUTME: Validate command checking a CSV file before upload
// ABOUTME: Runs the same pre-flight checks the UI applies, for CI use

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mappingdesk/skumap/internal/csvcheck"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.csv>",
	Short: "Validate a mapping CSV file",
	Long: `Validate a mapping CSV file against the upload requirements:
required headers present, at least one record, at most 1000 records.

Exit codes:
  0 - File is valid
  1 - File fails validation
  2 - Error (file unreadable)`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runValidate(args[0], os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate checks the file and returns exit code
func runValidate(path string, w io.Writer) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	result := csvcheck.Validate(string(data))

	if IsJSONOutput() {
		out := map[string]interface{}{
			"valid":   result.IsValid,
			"message": result.Message,
		}
		if len(result.MissingFields) > 0 {
			out["missing_fields"] = result.MissingFields
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		symbol := "✓"
		if !result.IsValid {
			symbol = "✗"
		}
		fmt.Fprintf(w, "%s %s\n", symbol, result.Message)
		for _, field := range result.MissingFields {
			fmt.Fprintf(w, "  missing: %s\n", field)
		}
	}

	if !result.IsValid {
		return 1
	}
	return 0
}
