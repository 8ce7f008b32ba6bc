package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/jobfinder/internal/navigation"
	"github.com/devilmonastery/jobfinder/internal/session"
)

func newSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show where the app would take you",
		Long: `Resolve the stored credentials against the server the same way the app
does on launch: signed out, signed in without a profile, or ready.`,
	}

	cmd.AddCommand(newSessionStatusCommand())
	cmd.AddCommand(newSessionWatchCommand())

	return cmd
}

func newSessionStatusCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Resolve the session once and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			r := session.NewResolver(cc.Client,
				session.WithCheckTimeout(timeout),
				session.WithLogger(cc.Logger))
			defer r.Close()

			settled := make(chan session.Snapshot, 1)
			r.OnChange(func(snap session.Snapshot) {
				if snap.State == session.Checking {
					return
				}
				select {
				case settled <- snap:
				default:
				}
			})
			r.Attach(cc.Creds)

			ctx, cancel := settleContext(cmd.Context(), timeout)
			defer cancel()

			var snap session.Snapshot
			select {
			case snap = <-settled:
			case <-ctx.Done():
				return fmt.Errorf("session did not resolve: %w", ctx.Err())
			}

			return printMarkdown(cc, describeSession(snap))
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "How long the profile check may take (0 for no limit)")

	return cmd
}

// settleContext bounds the wait for a resolved session a little past the
// profile check timeout. A zero timeout waits until parent is done.
func settleContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout+time.Second)
}

func newSessionWatchCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the session as you log in, log out or set up your profile",
		Long: `Keep resolving the session until interrupted. Logging in or out from
another terminal switches the screen group shown here.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			r := session.NewResolver(cc.Client,
				session.WithCheckTimeout(timeout),
				session.WithLogger(cc.Logger))
			defer r.Close()

			shell := navigation.NewShell(r, navigation.RendererFunc(func(group navigation.Group, snap session.Snapshot) {
				fmt.Printf("\n[%s] ", time.Now().Format("15:04:05"))
				if err := printMarkdown(cc, describeSession(snap)); err != nil {
					cc.Logger.Warn("render failed", "error", err)
				}
			}))
			shell.Start()
			defer shell.Stop()

			r.Attach(cc.Creds)
			fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", cc.Creds.Path())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "How long each profile check may take")

	return cmd
}

// describeSession renders a snapshot as the group it routes to and what
// the user can do there
func describeSession(snap session.Snapshot) string {
	group := navigation.GroupFor(snap.State)
	var b strings.Builder

	switch group {
	case navigation.GroupLoading:
		b.WriteString("## Checking your session…\n")
	case navigation.GroupAuth:
		b.WriteString("## Signed out\n\n")
		b.WriteString("Run `jobfinder auth login` or `jobfinder auth register`.\n")
	case navigation.GroupProfileSetup:
		fmt.Fprintf(&b, "## Welcome, %s\n\n", snap.Identity.Email)
		b.WriteString("Your profile is not set up yet. Run `jobfinder profile setup`.\n")
	case navigation.GroupMain:
		fmt.Fprintf(&b, "## Signed in as %s\n\n", snap.Identity.Email)
		b.WriteString("Run `jobfinder jobs home` for jobs matching your profile.\n")
	}

	screens := group.Screens()
	names := make([]string, len(screens))
	for i, s := range screens {
		names[i] = string(s)
	}
	fmt.Fprintf(&b, "\n*screens: %s*\n", strings.Join(names, ", "))
	return b.String()
}
