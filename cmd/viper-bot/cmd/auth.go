package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandyviper/kite-viper-bot/internal/broker/kite"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with Zerodha Kite",
	Long: `Authenticate with the Zerodha Kite Connect API.

Kite access tokens expire every day and have to be regenerated through an
interactive login. Without flags, this prints the login URL; after logging
in, pass the request_token from the redirect back with --request-token to
exchange it for an access token.

Example:
  viper-bot auth
  viper-bot auth --request-token abcd1234`,
	RunE: runAuth,
}

var requestToken string

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.Flags().StringVar(&requestToken, "request-token", "", "request token from the Kite login redirect")
}

func runAuth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Kite.APIKey == "" || cfg.Kite.APISecret == "" {
		return fmt.Errorf("KITE_API_KEY and KITE_API_SECRET must be set")
	}

	auth := kite.NewAuth(cfg.Kite.APIKey, cfg.Kite.APISecret, cfg.Kite.AccessToken)

	if requestToken == "" {
		fmt.Println("Open this URL, log in, and copy the request_token from the redirect:")
		fmt.Println("  " + auth.LoginURL())
		fmt.Println()
		fmt.Println("Then run: viper-bot auth --request-token <token>")
		return nil
	}

	session, err := auth.GenerateSession(cmd.Context(), requestToken)
	if err != nil {
		return fmt.Errorf("session exchange failed: %w", err)
	}

	fmt.Printf("Authenticated as %s (%s)\n", session.UserName, session.UserID)
	fmt.Println()
	fmt.Println("Add this to your .env for the rest of the trading day:")
	fmt.Printf("  KITE_ACCESS_TOKEN=%s\n", session.AccessToken)
	return nil
}
