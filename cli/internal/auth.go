package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devilmonastery/jobfinder/internal/api"
	"github.com/devilmonastery/jobfinder/internal/client"
)

// formatDuration formats a duration in a human-friendly way (e.g., "2 days and 3 hours")
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var parts []string
	for _, p := range []struct {
		n    int
		unit string
	}{{days, "day"}, {hours, "hour"}, {minutes, "minute"}} {
		switch {
		case p.n == 1:
			parts = append(parts, "1 "+p.unit)
		case p.n > 1:
			parts = append(parts, fmt.Sprintf("%d %ss", p.n, p.unit))
		}
	}

	switch len(parts) {
	case 0:
		return "less than a minute"
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  `Create an account, sign in and out of the Jobfinder API`,
	}

	cmd.AddCommand(newAuthRegisterCommand())
	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthLogoutCommand())
	cmd.AddCommand(newAuthStatusCommand())
	cmd.AddCommand(newAuthTokenCommand())

	return cmd
}

func newAuthRegisterCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			email, password, err := promptCredentials(email, password)
			if err != nil {
				return err
			}

			resp, err := cc.Client.Register(cmd.Context(), email, password)
			if err != nil {
				return describeAuthError("registration failed", err)
			}

			fmt.Printf("✓ Account created for %s\n", resp.User.Email)
			fmt.Println("  Next: run 'jobfinder profile setup' to complete your profile")
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Email (prompted if not provided)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted if not provided)")

	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to the Jobfinder server",
		Long: `Authenticate with email and password. The token is stored per context
under ~/.config/jobfinder.

Examples:
  # Prompt for everything
  jobfinder auth login

  # Non-interactive
  jobfinder auth login --email asha@example.com --password secret1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			email, password, err := promptCredentials(email, password)
			if err != nil {
				return err
			}

			resp, err := cc.Client.Login(cmd.Context(), email, password)
			if err != nil {
				return describeAuthError("authentication failed", err)
			}

			fmt.Printf("✓ Successfully logged in as %s\n", resp.User.Email)
			fmt.Printf("  Token expires: %s\n", resp.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Email (prompted if not provided)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted if not provided)")

	return cmd
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and revoke the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			if _, err := cc.Creds.Load(); errors.Is(err, client.ErrNotLoggedIn) {
				fmt.Println("Not logged in")
				return nil
			}
			if err := cc.Client.Logout(cmd.Context()); err != nil {
				cc.Logger.Warn("server logout failed, local credentials removed", "error", err)
			}
			fmt.Println("✓ Logged out")
			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			creds, err := cc.Creds.Load()
			if err != nil {
				fmt.Println("Not logged in")
				return nil
			}

			fmt.Printf("Logged in as: %s\n", creds.Email)
			fmt.Printf("User ID: %s\n", creds.UserID)
			fmt.Printf("Token expires: %s\n", creds.ExpiresAt.Local().Format("2006-01-02 15:04:05 MST"))

			now := time.Now()
			if creds.IsExpired() {
				fmt.Printf("⚠  Token expired %s ago - run 'jobfinder auth login'\n", formatDuration(now.Sub(creds.ExpiresAt)))
			} else {
				fmt.Printf("✓  Valid for %s\n", formatDuration(creds.ExpiresAt.Sub(now)))
			}
			return nil
		},
	}
}

func newAuthTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Display the current access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := getCliContext(cmd).Creds.Load()
			if err != nil {
				return fmt.Errorf("not logged in: %w", err)
			}
			fmt.Println(creds.AccessToken)
			return nil
		},
	}
}

// describeAuthError turns API error codes into actionable messages
func describeAuthError(prefix string, err error) error {
	switch {
	case client.HasCode(err, api.CodeInvalidCredentials):
		return fmt.Errorf("%s: wrong email or password", prefix)
	case client.HasCode(err, api.CodeEmailTaken):
		return fmt.Errorf("%s: that email is already registered, try 'jobfinder auth login'", prefix)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// promptCredentials asks for whatever was not given as a flag. The
// password is read without echo when stdin is a terminal.
func promptCredentials(email, password string) (string, string, error) {
	if email == "" {
		fmt.Print("Email: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", "", fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	if password == "" {
		fmt.Print("Password: ")
		if !term.IsTerminal(int(syscall.Stdin)) {
			return "", "", errors.New("password required: pass --password when stdin is not a terminal")
		}
		passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // newline after password input
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(passwordBytes)
	}

	return email, password, nil
}
