package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"stravadump/pkg/auth"
)

var (
	authName  string
	authToken string
)

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored Strava access tokens",
	Long: `Store, inspect, and remove Strava access tokens.

Tokens are kept in the system keychain when available, falling back to an
encrypted file. stravadump never performs the OAuth exchange itself; obtain
a token from the Strava API settings page or your own OAuth flow first.`,
}

// authLoginCmd stores a token
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an access token",
	Example: `  # Prompted, hidden input
  stravadump auth login

  # Non-interactive, under a named account
  stravadump auth login --name personal --token $TOKEN`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := strings.TrimSpace(authToken)
		if token == "" {
			var err error
			token, err = promptToken()
			if err != nil {
				return err
			}
		}
		if token == "" {
			return fmt.Errorf("no token provided")
		}

		manager, err := auth.NewManager()
		if err != nil {
			return fmt.Errorf("failed to open token store: %w", err)
		}

		if err := manager.Store(&auth.Token{Name: authName, AccessToken: token}); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}

		name := authName
		if name == "" {
			name = auth.DefaultTokenName
		}
		fmt.Printf("Token stored as %q\n", name)
		return nil
	},
}

// authLogoutCmd removes a stored token
var authLogoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove a stored access token",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}

		manager, err := auth.NewManager()
		if err != nil {
			return fmt.Errorf("failed to open token store: %w", err)
		}

		if err := manager.Delete(name); err != nil {
			return fmt.Errorf("failed to remove token: %w", err)
		}

		fmt.Println("Token removed")
		return nil
	},
}

// authStatusCmd reports whether a usable token exists
var authStatusCmd = &cobra.Command{
	Use:   "status [name]",
	Short: "Show whether a usable access token is available",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}

		manager, err := auth.NewManager()
		if err != nil {
			return fmt.Errorf("failed to open token store: %w", err)
		}

		token, err := manager.Retrieve(name)
		if err != nil {
			fmt.Println("No token available")
			return nil
		}

		fmt.Printf("Token %q available (stored %s)\n", token.Name, token.LastModified.Format("2006-01-02 15:04"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)

	authLoginCmd.Flags().StringVar(&authName, "name", "", "account name for the stored token")
	authLoginCmd.Flags().StringVar(&authToken, "token", "", "access token (prompted when omitted)")
}

// promptToken reads a token from the terminal, hiding input when stdin is a
// TTY.
func promptToken() (string, error) {
	fmt.Print("Strava access token: ")

	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}
