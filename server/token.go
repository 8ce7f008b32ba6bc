package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/jobfinder/internal/auth"
	"github.com/devilmonastery/jobfinder/internal/domain/services"
)

func newTokenCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Token management commands",
		Long:  "Commands for issuing and revoking API tokens",
	}

	cmd.AddCommand(newIssueTokenCommand(configPath))
	cmd.AddCommand(newRevokeTokenCommand(configPath))

	return cmd
}

func newIssueTokenCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "issue EMAIL",
		Short: "Issue an API token for an existing account",
		Long: `Issue a JWT for an existing account without its password.

Useful for support and scripted checks against the API. The token has the
configured lifetime and can be revoked with "server token revoke".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			authService, closeFn, err := adminAuthService(ctx, *configPath, false)
			if err != nil {
				return err
			}
			defer closeFn()

			sess, err := authService.IssueFor(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Println("\n⚠️  IMPORTANT: Save this token securely. It will not be shown again.")
			fmt.Println()
			fmt.Printf("Email:       %s\n", sess.User.Email)
			fmt.Printf("User ID:     %s\n", sess.User.ID)
			fmt.Printf("Expires At:  %s\n", sess.ExpiresAt.Format(time.RFC3339))
			fmt.Println()
			fmt.Println("JWT Token:")
			fmt.Println(sess.Token)
			return nil
		},
	}
}

func newRevokeTokenCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke TOKEN",
		Short: "Revoke an API token",
		Long:  "Revoke a JWT so the API rejects it until it expires. Requires Redis so every replica sees the revocation.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			authService, closeFn, err := adminAuthService(ctx, *configPath, true)
			if err != nil {
				return err
			}
			defer closeFn()

			claims, err := authService.Revoke(ctx, args[0])
			if errors.Is(err, auth.ErrExpiredToken) {
				fmt.Println("Token already expired")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("Revoked token %s for %s\n", claims.TokenID, claims.Email)
			return nil
		},
	}
}

// adminAuthService builds an AuthService for one-shot commands. Revocations
// only reach the running servers through Redis, so needRedis refuses to
// fall back to a process-local denylist.
func adminAuthService(ctx context.Context, configPath string, needRedis bool) (*services.AuthService, func(), error) {
	cfg, store, err := openAdminStore(ctx, configPath)
	if err != nil {
		return nil, nil, err
	}
	rdb, err := openRedis(cfg)
	if err != nil {
		store.close()
		return nil, nil, err
	}
	if rdb == nil && needRedis {
		store.close()
		return nil, nil, errors.New("redis is not configured; revocations would not reach the API servers")
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWT.SigningKey, cfg.Auth.JWT.Lifetime)
	svc := services.NewAuthService(store.repos.Users, jwtManager, openRevoker(rdb))
	return svc, func() {
		if rdb != nil {
			rdb.Close()
		}
		store.close()
	}, nil
}
