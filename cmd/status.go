// ABOUTME: Status command reporting mapping KPIs for CI pipelines
// ABOUTME: Optionally fails when unmapped SKUs exceed a threshold

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mappingdesk/skumap/internal/client"
)

var maxUnmapped int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show mapping KPIs",
	Long: `Show the mapping completeness KPIs from the dashboard.

With --max-unmapped, exits non-zero when the number of rows without a
Linnworks SKU exceeds the threshold, for use in CI pipelines.

Exit codes:
  0 - OK (threshold not exceeded, or no threshold given)
  1 - Unmapped rows exceed --max-unmapped
  2 - Error (connectivity, not logged in)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runStatus(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVar(&maxUnmapped, "max-unmapped", -1, "Fail when unmapped rows exceed this count (-1 disables)")
}

// runStatus fetches the dashboard KPIs and returns exit code
func runStatus(ctx context.Context, w io.Writer) int {
	session := newSession()
	if !session.LoggedIn() {
		fmt.Fprintln(w, "Error: not logged in. Run 'skumap login' first.")
		return 2
	}

	c := newClient(session)
	resp, err := c.Dashboard(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatStatusJSON(resp))
	} else {
		fmt.Fprintln(w, formatStatusHuman(resp))
	}

	if maxUnmapped >= 0 && resp.NullIMSKU > maxUnmapped {
		return 1
	}
	return 0
}

// formatStatusHuman formats the KPIs for human readability
func formatStatusHuman(resp *client.DashboardResponse) string {
	var output string

	output += fmt.Sprintf("Mapping rows:           %d\n", len(resp.MappingData))
	output += fmt.Sprintf("Unmapped (no SKU):      %d\n", resp.NullIMSKU)
	output += fmt.Sprintf("Unique Linnworks SKUs:  %d\n", resp.UniqueIMSKU)
	output += fmt.Sprintf("Unique marketplace:     %d\n", resp.UniqueMarketplaceSKU)
	output += fmt.Sprintf("Unique regions:         %d\n", resp.UniqueRegions)
	output += fmt.Sprintf("Titles to map:          %d\n", resp.LinTitleToBeMapped)
	output += fmt.Sprintf("Categories to map:      %d\n", resp.LinCategoryToBeMapped)
	output += fmt.Sprintf("No parent SKU:          %d\n", resp.NullParentSKU)
	output += fmt.Sprintf("Unique parent SKUs:     %d", resp.UniqueParentSKU)

	if maxUnmapped >= 0 {
		if resp.NullIMSKU > maxUnmapped {
			output += fmt.Sprintf("\n\nFAILED: %d unmapped rows exceed threshold %d", resp.NullIMSKU, maxUnmapped)
		} else {
			output += fmt.Sprintf("\n\nPASSED: %d unmapped rows within threshold %d", resp.NullIMSKU, maxUnmapped)
		}
	}

	return output
}

// formatStatusJSON formats the KPIs as JSON
func formatStatusJSON(resp *client.DashboardResponse) string {
	out := map[string]interface{}{
		"rows":                      len(resp.MappingData),
		"null_im_sku":               resp.NullIMSKU,
		"unique_im_sku":             resp.UniqueIMSKU,
		"unique_marketplace_sku":    resp.UniqueMarketplaceSKU,
		"unique_regions":            resp.UniqueRegions,
		"lin_title_to_be_mapped":    resp.LinTitleToBeMapped,
		"lin_category_to_be_mapped": resp.LinCategoryToBeMapped,
		"null_parent_sku":           resp.NullParentSKU,
		"unique_parent_sku":         resp.UniqueParentSKU,
	}

	if maxUnmapped >= 0 {
		status := "passed"
		if resp.NullIMSKU > maxUnmapped {
			status = "failed"
		}
		out["status"] = status
		out["max_unmapped"] = maxUnmapped
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	return string(data)
}
