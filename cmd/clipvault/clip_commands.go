package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipvault/internal/api"
	"clipvault/internal/clips"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		player     string
		tournament string
		eventType  string
		tags       []string
		notes      string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "add <reference>",
		Short: "Ingest a clip and record its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			resp, err := client.AddClip(cmd.Context(), api.AddClipRequest{
				Reference:  args[0],
				Player:     player,
				Tournament: tournament,
				EventType:  eventType,
				Tags:       tags,
				Notes:      notes,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, resp)
			}
			clip := resp.Clip
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added clip %s\n", clip.ID)
			fmt.Fprintf(out, "Key: %s\n", clip.ObjectKey)
			fmt.Fprintf(out, "URL: %s\n", clip.VideoURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Player featured in the clip")
	cmd.Flags().StringVar(&tournament, "tournament", "", "Tournament the clip is from")
	cmd.Flags().StringVar(&eventType, "event", "", "Event type (serve, kill, dig, block, ace, set, other)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag to attach (repeatable)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the created clip as JSON")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		search     string
		eventType  string
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored clips",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			resp, err := client.ListClips(cmd.Context(), search, eventType, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			if len(resp.Clips) == 0 {
				fmt.Fprintln(out, "No clips stored")
				return nil
			}

			rows := make([][]string, 0, len(resp.Clips))
			for _, clip := range resp.Clips {
				rows = append(rows, []string{
					clip.ID,
					clip.Player,
					clip.Tournament,
					string(clip.EventType),
					strings.Join(clip.Tags, ","),
					clip.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Player", "Tournament", "Event", "Tags", "Added"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Match against player, tournament, and notes")
	cmd.Flags().StringVar(&eventType, "event", "", "Restrict to one event type")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows to return (0 = all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the listing as JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one clip in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			resp, err := client.GetClip(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}
			printClip(cmd, resp.Clip)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the clip as JSON")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a clip's metadata row",
		Long: "Remove deletes the metadata row only. The stored video object is " +
			"content-addressed and left in place.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.RemoveClip(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed clip %s\n", args[0])
			return nil
		},
	}
	return cmd
}

func printClip(cmd *cobra.Command, clip *clips.Clip) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:         %s\n", clip.ID)
	fmt.Fprintf(out, "Reference:  %s\n", clip.Reference)
	fmt.Fprintf(out, "Key:        %s\n", clip.ObjectKey)
	fmt.Fprintf(out, "URL:        %s\n", clip.VideoURL)
	fmt.Fprintf(out, "Player:     %s\n", clip.Player)
	fmt.Fprintf(out, "Tournament: %s\n", clip.Tournament)
	fmt.Fprintf(out, "Event:      %s\n", clip.EventType)
	fmt.Fprintf(out, "Tags:       %s\n", strings.Join(clip.Tags, ", "))
	fmt.Fprintf(out, "Notes:      %s\n", clip.Notes)
	fmt.Fprintf(out, "Added:      %s\n", clip.CreatedAt.Local().Format("2006-01-02 15:04:05"))
}
