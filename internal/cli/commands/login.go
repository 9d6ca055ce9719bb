package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tunedeck/tunedeck/internal/domain/integration"
)

var hubURL string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the model hub for gated datasets and base models",
	Run: func(cmd *cobra.Command, args []string) {
		handler := integration.NewOAuthHandler("tunedeck-cli", hubURL, []string{"datasets:read", "models:read"})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		token, err := handler.Login(ctx)
		if err != nil {
			fail(fmt.Sprintf("Login failed: %v", err))
		}

		creds := integration.NewCredentialManager()
		if err := creds.SetHubToken(token.AccessToken); err != nil {
			fail(fmt.Sprintf("Could not store token: %v", err))
		}
		color.Green("Logged in to %s", hubURL)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored model hub token",
	Run: func(cmd *cobra.Command, args []string) {
		creds := integration.NewCredentialManager()
		if err := creds.ClearHubToken(); err != nil {
			fail(fmt.Sprintf("Could not remove token: %v", err))
		}
		fmt.Println("Logged out")
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	loginCmd.Flags().StringVar(&hubURL, "hub", "https://hub.tunedeck.dev", "model hub base URL")
}
