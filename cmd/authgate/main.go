// Command authgate runs the session-authentication gateway.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "authgate",
		Short: "Session-authentication gateway in front of Stytch",
		Long: `authgate accepts magic-link logins and session credentials, checks them
with the identity provider, and issues the session cookie.

Configuration is read from the environment (APP_ENV, PORT, STYTCH_PROJECT_ID,
STYTCH_SECRET, FRONTEND_URL, CORS_ORIGINS, REDIS_ADDR, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serveCmd(),
		configCmd(),
		versionCmd(),
	)
	return root
}
