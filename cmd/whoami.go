// ABOUTME: Whoami command reporting the current session identity
// ABOUTME: Decodes the stored access token for email, department, expiry

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session identity",
	Long: `Show the email, department, and token expiry of the current session.

Exit codes:
  0 - Logged in
  2 - Not logged in or token unreadable`,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runWhoami(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// runWhoami prints the session identity and returns exit code
func runWhoami(w io.Writer) int {
	session := newSession()
	if !session.LoggedIn() {
		fmt.Fprintln(w, "Not logged in")
		return 2
	}

	claims, err := session.Claims()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	sess := session.Session()
	expiresAt := time.Unix(claims.Exp, 0)

	if IsJSONOutput() {
		out := map[string]interface{}{
			"email":      claims.Email,
			"department": sess.Department,
			"expires_at": expiresAt.Format(time.RFC3339),
			"expired":    claims.Expired(),
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	fmt.Fprintf(w, "Email:      %s\n", claims.Email)
	fmt.Fprintf(w, "Department: %s\n", sess.Department)
	if claims.Expired() {
		fmt.Fprintf(w, "Token:      expired %s\n", expiresAt.Format(time.RFC3339))
	} else {
		fmt.Fprintf(w, "Token:      valid until %s\n", expiresAt.Format(time.RFC3339))
	}
	return 0
}
