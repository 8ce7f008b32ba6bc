package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/jobfinder/internal/api"
	"github.com/devilmonastery/jobfinder/internal/client"
)

func newBookmarksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookmarks",
		Aliases: []string{"saved"},
		Short:   "List and manage saved jobs",
	}

	cmd.AddCommand(newBookmarksListCommand())
	cmd.AddCommand(newBookmarksRemoveCommand())

	return cmd
}

func newBookmarksListCommand() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			resp, err := cc.Client.Bookmarks(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			return printMarkdown(cc, bookmarksMarkdown(resp, time.Now()))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum bookmarks to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Bookmarks to skip")

	return cmd
}

func newBookmarksRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove JOB_ID",
		Short: "Remove a saved job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := getCliContext(cmd)
			err := cc.Client.RemoveBookmark(cmd.Context(), args[0])
			if client.HasCode(err, api.CodeNotFound) {
				return fmt.Errorf("%s is not bookmarked", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Printf("Removed %s\n", args[0])
			return nil
		},
	}
}
