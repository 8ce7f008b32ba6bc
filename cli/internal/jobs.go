package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/jobfinder/internal/api"
	"github.com/devilmonastery/jobfinder/internal/client"
	"github.com/devilmonastery/jobfinder/internal/jobs"
)

func newJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Search and browse jobs",
	}

	cmd.AddCommand(newJobsSearchCommand())
	cmd.AddCommand(newJobsHomeCommand())
	cmd.AddCommand(newJobsShowCommand())
	cmd.AddCommand(newJobsBookmarkCommand())

	return cmd
}

// addFilterFlags binds the result filters shared by search and home
func addFilterFlags(cmd *cobra.Command, crit *jobs.Criteria, page *int) {
	cmd.Flags().StringVar(&crit.Text, "filter", "", "Only jobs whose title or employer contains this text")
	cmd.Flags().StringVar(&crit.Type, "type", "", "Employment type (Full-time, Part-time, Contract, Remote)")
	cmd.Flags().StringVar(&crit.Location, "location", "", "Only jobs in this city")
	cmd.Flags().IntVar(page, "page", 1, "Result page")
}

func newJobsSearchCommand() *cobra.Command {
	var (
		crit jobs.Criteria
		page int
	)

	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search jobs",
		Example: `  jobfinder jobs search golang developer
  jobfinder jobs search "data scientist" --type Remote --page 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			query := strings.Join(args, " ")
			resp, err := cc.Client.SearchJobs(cmd.Context(), query, page, crit)
			if err != nil {
				return describeJobsError(err)
			}
			return printMarkdown(cc, jobsMarkdown(fmt.Sprintf("Jobs for %q", resp.Query), resp, time.Now()))
		},
	}
	addFilterFlags(cmd, &crit, &page)

	return cmd
}

func newJobsHomeCommand() *cobra.Command {
	var (
		crit jobs.Criteria
		page int
	)

	cmd := &cobra.Command{
		Use:   "home",
		Short: "Jobs for your preferred role",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			resp, err := cc.Client.HomeFeed(cmd.Context(), page, crit)
			if client.HasCode(err, api.CodeNoPreferredRole) {
				return fmt.Errorf("set a preferred role first: jobfinder profile setup --role ROLE")
			}
			if err != nil {
				return describeJobsError(err)
			}
			return printMarkdown(cc, jobsMarkdown(fmt.Sprintf("%s jobs", resp.Query), resp, time.Now()))
		},
	}
	addFilterFlags(cmd, &crit, &page)

	return cmd
}

func newJobsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show JOB_ID",
		Short: "Show a job's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			resp, err := cc.Client.Job(cmd.Context(), args[0])
			if err != nil {
				return describeJobsError(err)
			}
			return printMarkdown(cc, jobMarkdown(resp, time.Now()))
		},
	}
}

func newJobsBookmarkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bookmark JOB_ID",
		Short: "Save or unsave a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			resp, err := cc.Client.ToggleBookmark(cmd.Context(), args[0])
			if err != nil {
				return describeJobsError(err)
			}
			if resp.Bookmarked {
				fmt.Printf("★ Bookmarked %s\n", resp.JobID)
			} else {
				fmt.Printf("☆ Removed bookmark %s\n", resp.JobID)
			}
			return nil
		},
	}
}

// describeJobsError explains upstream search failures
func describeJobsError(err error) error {
	switch {
	case client.HasCode(err, api.CodeRateLimited):
		return fmt.Errorf("job search quota exhausted, try again later")
	case client.HasCode(err, api.CodeUpstream):
		return fmt.Errorf("job search is unavailable: %w", err)
	case client.HasCode(err, api.CodeNotFound):
		return fmt.Errorf("job not found")
	}
	return err
}
