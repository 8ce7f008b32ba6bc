package cli

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

func newStatusCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check that the server and its dependencies are healthy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			address := cc.Context.GRPCAddress()
			if address == "" {
				return fmt.Errorf("context %q has no grpc address", cc.Config.CurrentContext)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			status, err := probeHealth(ctx, address, cc.Context.ServerName())
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			fmt.Printf("%s: %s\n", address, status)
			if status != grpc_health_v1.HealthCheckResponse_SERVING {
				return fmt.Errorf("server is %s", status)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Probe timeout")

	return cmd
}

// probeHealth asks the server's gRPC health service for its overall status
func probeHealth(ctx context.Context, address, serverName string) (grpc_health_v1.HealthCheckResponse_ServingStatus, error) {
	conn, err := dialHealth(address, serverName)
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN, err
	}
	defer conn.Close()

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

func dialHealth(address, serverName string) (*grpc.ClientConn, error) {
	opts := []grpc.DialOption{
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second, // Send keepalive ping every 10 seconds
			Timeout:             3 * time.Second,  // Wait 3 seconds for ping ack
			PermitWithoutStream: true,             // Allow pings when no active streams
		}),
	}

	// Use TLS for production hosts, insecure for localhost
	if isLocalhost(address) {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		// Extract server name for SNI (remove port if present)
		if serverName == "" {
			if idx := strings.LastIndex(address, ":"); idx != -1 {
				serverName = address[:idx]
			}
		}
		creds := credentials.NewTLS(&tls.Config{
			ServerName: serverName,
			MinVersion: tls.VersionTLS12,
		})
		opts = append(opts, grpc.WithTransportCredentials(creds))
	}

	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return conn, nil
}

// isLocalhost checks if an address is localhost/127.0.0.1 or a cluster-internal address
func isLocalhost(address string) bool {
	lower := strings.ToLower(address)
	return strings.Contains(lower, "localhost") ||
		strings.Contains(lower, "127.0.0.1") ||
		strings.HasPrefix(lower, "::1") ||
		strings.HasPrefix(lower, "[::1]") ||
		// service names without dots are cluster-internal
		!strings.Contains(address, ".")
}
