package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type resolution struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title,omitempty"`
	StreamURL string `json:"stream_url,omitempty"`
	Resolved  bool   `json:"resolved"`
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resolve <video-id> [video-id...]",
		Short: "Resolve videos to playable audio stream URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := ctx.newStreamResolver()
			if err != nil {
				return err
			}

			results := make([]resolution, 0, len(args))
			for _, videoID := range args {
				var entry resolution
				entry.VideoID = videoID
				if stream, ok := resolver.Resolve(cmd.Context(), videoID); ok {
					entry.Title = stream.Title
					entry.StreamURL = stream.URL
					entry.Resolved = true
				}
				results = append(results, entry)
			}

			if jsonOutput {
				return writeJSON(cmd, results)
			}
			renderResolutions(cmd, results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func renderResolutions(cmd *cobra.Command, results []resolution) {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		stream := result.StreamURL
		if !result.Resolved {
			stream = "(absent)"
		}
		rows = append(rows, []string{result.VideoID, truncate(result.Title, 48), truncate(stream, 64)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"VIDEO ID", "TITLE", "STREAM"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	))
}
