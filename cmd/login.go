// ABOUTME: Login command exchanging credentials for a persisted session
// ABOUTME: Prompts for missing credentials with a huh form

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the mapping backend",
	Long: `Authenticate against the mapping backend and persist the session.

Credentials can be passed via flags or entered interactively. The password
can also come from the SKUMAP_PASSWORD environment variable.

Exit codes:
  0 - Logged in
  2 - Error (bad credentials, connectivity)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogin(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prefer SKUMAP_PASSWORD)")
}

// runLogin performs the credential exchange and returns exit code
func runLogin(ctx context.Context, w io.Writer) int {
	email := loginEmail
	password := loginPassword
	if password == "" {
		password = os.Getenv("SKUMAP_PASSWORD")
	}

	if email == "" || password == "" {
		if err := promptCredentials(&email, &password); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}

	session := newSession()
	if err := session.Login(ctx, email, password); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	sess := session.Session()

	if IsJSONOutput() {
		out := map[string]string{
			"email":      email,
			"department": sess.Department,
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Logged in as %s (%s)\n", email, sess.Department)
	}
	return 0
}

// promptCredentials collects missing credentials interactively
func promptCredentials(email, password *string) error {
	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(email))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password))
	}

	return huh.NewForm(huh.NewGroup(fields...)).Run()
}
