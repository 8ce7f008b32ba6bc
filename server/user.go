package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/jobfinder/internal/config"
	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
	"github.com/devilmonastery/jobfinder/internal/domain/services"
	"github.com/devilmonastery/jobfinder/internal/pkg/idgen"
	"github.com/devilmonastery/jobfinder/internal/pkg/timeutil"
)

// openAdminStore loads config and opens persistent storage for one-shot
// admin commands. The memory driver is refused since nothing would persist.
func openAdminStore(ctx context.Context, configPath string) (*config.Config, *storage, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver == config.DriverMemory {
		return nil, nil, errors.New("admin commands need a persistent database driver")
	}
	if err := idgen.Initialize(cfg.NodeID); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize ID generator: %w", err)
	}
	store, err := openStorage(ctx, cfg, -1)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

func newUserCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Commands for managing accounts in the Jobfinder database",
	}

	cmd.AddCommand(newUserCreateCommand(configPath))
	cmd.AddCommand(newUserListCommand(configPath))
	cmd.AddCommand(newUserSetRoleCommand(configPath))
	cmd.AddCommand(newUserResetPasswordCommand(configPath))

	return cmd
}

func newUserCreateCommand(configPath *string) *cobra.Command {
	var (
		email    string
		password string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		Long:  "Create a new account with the specified email, password, and role",
		Example: `  # Create an admin user
  server user create --email admin@example.com --password secret123 --role admin

  # Create a regular user
  server user create --email user@example.com --password pass123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, store, err := openAdminStore(ctx, *configPath)
			if err != nil {
				return err
			}
			defer store.close()

			user, err := services.NewUserService(store.repos.Users).CreateUser(ctx, email, password, entities.Role(role))
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			slog.Info("User created successfully",
				"user_id", user.ID,
				"email", user.Email,
				"role", user.Role,
			)
			fmt.Printf("Created %s (%s) with role %s\n", user.Email, user.ID, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User email (required)")
	cmd.Flags().StringVar(&password, "password", "", "User password (required)")
	cmd.Flags().StringVar(&role, "role", "user", "User role (user, admin)")

	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newUserListCommand(configPath *string) *cobra.Command {
	var (
		search string
		role   string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, store, err := openAdminStore(ctx, *configPath)
			if err != nil {
				return err
			}
			defer store.close()

			opts := repositories.ListUsersOptions{Limit: limit, Offset: offset, Search: search}
			if role != "" {
				r := entities.Role(role)
				opts.Role = &r
			}
			users, total, err := services.NewUserService(store.repos.Users).ListUsers(ctx, opts)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tROLE\tACTIVE\tLAST LOGIN")
			now := time.Now()
			for _, u := range users {
				last := "never"
				if u.LastLogin != nil {
					last = timeutil.Ago(*u.LastLogin, now)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", u.ID, u.Email, u.Role, u.IsActive, last)
			}
			w.Flush()
			fmt.Printf("\n%d of %d users\n", len(users), total)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by email substring")
	cmd.Flags().StringVar(&role, "role", "", "Filter by role (user, admin)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum users to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Users to skip")

	return cmd
}

func newUserSetRoleCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role USER_ID ROLE",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, store, err := openAdminStore(ctx, *configPath)
			if err != nil {
				return err
			}
			defer store.close()

			user, err := services.NewUserService(store.repos.Users).SetRole(ctx, args[0], entities.Role(args[1]))
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", user.Email, user.Role)
			return nil
		},
	}
}

func newUserResetPasswordCommand(configPath *string) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "reset-password USER_ID",
		Short: "Replace a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, store, err := openAdminStore(ctx, *configPath)
			if err != nil {
				return err
			}
			defer store.close()

			if err := services.NewUserService(store.repos.Users).ResetPassword(ctx, args[0], password); err != nil {
				return err
			}
			fmt.Println("Password updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "New password (required)")
	cmd.MarkFlagRequired("password")

	return cmd
}
