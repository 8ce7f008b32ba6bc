package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devilmonastery/jobfinder/internal/api"
	"github.com/devilmonastery/jobfinder/internal/client"
)

func newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit your profile",
	}

	cmd.AddCommand(newProfileShowCommand())
	cmd.AddCommand(newProfileSetupCommand())
	cmd.AddCommand(newProfileAvatarCommand())

	return cmd
}

func newProfileShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			resp, err := cc.Client.Profile(cmd.Context())
			if client.HasCode(err, api.CodeNotFound) {
				fmt.Println("No profile yet. Run 'jobfinder profile setup'.")
				return nil
			}
			if err != nil {
				return err
			}
			return printMarkdown(cc, profileMarkdown(resp))
		},
	}
}

func newProfileSetupCommand() *cobra.Command {
	var req api.ProfileRequest

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create or update your profile",
		Long: `Create or update your profile. Values not given as flags are taken from
the existing profile, or prompted for when stdin is a terminal.

Example:
  jobfinder profile setup --name "Asha" --city Pune --education Masters \
    --role "Backend Developer" --experience 3-5 --skills Go,SQL`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			ctx := cmd.Context()

			existing, err := cc.Client.Profile(ctx)
			switch {
			case err == nil:
				mergeProfile(&req, existing)
			case !client.HasCode(err, api.CodeNotFound):
				return err
			}

			if term.IsTerminal(int(syscall.Stdin)) {
				opts, err := cc.Client.ProfileOptions(ctx)
				if err != nil {
					return fmt.Errorf("failed to load profile options: %w", err)
				}
				if err := promptProfile(bufio.NewReader(os.Stdin), os.Stdout, &req, opts); err != nil {
					return err
				}
			}

			resp, err := cc.Client.SaveProfile(ctx, req)
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && len(apiErr.Body.Fields) > 0 {
				return fmt.Errorf("profile incomplete, missing: %s", strings.Join(apiErr.Body.Fields, ", "))
			}
			if err != nil {
				return err
			}

			fmt.Println("✓ Profile saved")
			return printMarkdown(cc, profileMarkdown(resp))
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&req.City, "city", "", "City")
	cmd.Flags().StringVar(&req.Education, "education", "", "Highest education")
	cmd.Flags().StringVar(&req.PreferredRole, "role", "", "Preferred role, used for the home feed")
	cmd.Flags().StringVar(&req.Experience, "experience", "", "Years of experience")
	cmd.Flags().StringSliceVar(&req.Skills, "skills", nil, "Comma separated skills")
	cmd.Flags().StringVar(&req.Bio, "bio", "", "Short bio (markdown)")

	return cmd
}

// mergeProfile fills fields the user did not set from the stored profile
func mergeProfile(req *api.ProfileRequest, existing *api.ProfileResponse) {
	p := existing.Profile
	if p == nil {
		return
	}
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&req.Name, p.Name)
	fill(&req.City, p.City)
	fill(&req.Education, p.Education)
	fill(&req.PreferredRole, p.PreferredRole)
	fill(&req.Experience, p.Experience)
	fill(&req.Bio, p.Bio)
	if len(req.Skills) == 0 {
		req.Skills = p.Skills
	}
}

// promptProfile asks for every required field that is still empty
func promptProfile(in *bufio.Reader, out io.Writer, req *api.ProfileRequest, opts *api.ProfileOptionsResponse) error {
	ask := func(label string, dst *string, choices []string) error {
		if *dst != "" {
			return nil
		}
		if len(choices) > 0 {
			fmt.Fprintf(out, "%s:\n", label)
			for i, c := range choices {
				fmt.Fprintf(out, "  %d. %s\n", i+1, c)
			}
			fmt.Fprintf(out, "Select (1-%d): ", len(choices))
		} else {
			fmt.Fprintf(out, "%s: ", label)
		}
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}
		answer := strings.TrimSpace(line)
		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(choices) {
			answer = choices[n-1]
		}
		*dst = answer
		return nil
	}

	steps := []struct {
		label   string
		dst     *string
		choices []string
	}{
		{"Name", &req.Name, nil},
		{"City", &req.City, nil},
		{"Education", &req.Education, opts.Education},
		{"Preferred role", &req.PreferredRole, opts.Roles},
		{"Experience", &req.Experience, opts.Experience},
	}
	for _, s := range steps {
		if err := ask(s.label, s.dst, s.choices); err != nil {
			return err
		}
	}

	if len(req.Skills) == 0 {
		var skills string
		if err := ask("Skills (comma separated, optional)", &skills, nil); err != nil {
			return err
		}
		for _, s := range strings.Split(skills, ",") {
			if s = strings.TrimSpace(s); s != "" {
				req.Skills = append(req.Skills, s)
			}
		}
	}
	return nil
}

func newProfileAvatarCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar IMAGE_FILE",
		Short: "Upload a profile picture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer f.Close()

			resp, err := cc.Client.UploadAvatar(cmd.Context(), filepath.Base(args[0]), f)
			if client.HasCode(err, api.CodeUnavailable) {
				return errors.New("the server has no image storage configured")
			}
			if err != nil {
				return err
			}
			fmt.Printf("✓ Avatar updated: %s\n", resp.AvatarThumb)
			return nil
		},
	}
}
