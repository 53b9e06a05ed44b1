package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"podscout/internal/keywords"
	"podscout/internal/logging"
	"podscout/internal/media"
)

type recommendation struct {
	media.Candidate
	WatchURL  string `json:"watch_url"`
	StreamURL string `json:"stream_url,omitempty"`
}

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var keywordsFlag string
	var inputFlag string
	var jsonOutput bool
	var withStreams bool

	cmd := &cobra.Command{
		Use:   "recommend [description]",
		Short: "Recommend podcast episodes for an interest description",
		Long: "Recommend podcast episodes by searching for keyword queries.\n" +
			"Keywords are extracted from the description with the configured LLM,\n" +
			"or supplied directly with --keywords to skip the extraction step.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			release, err := ctx.acquireStateLock()
			if err != nil {
				return err
			}
			defer release()

			kws, err := resolveKeywords(cmd, ctx, keywordsFlag, inputFlag, args)
			if err != nil {
				return err
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			tracker, err := ctx.newTracker()
			if err != nil {
				return err
			}
			client, err := ctx.newSearchClient(tracker)
			if err != nil {
				return err
			}
			agg, err := ctx.newAggregator(store, client)
			if err != nil {
				return err
			}

			candidates := agg.Recommend(cmd.Context(), kws)
			results := make([]recommendation, 0, len(candidates))
			for _, candidate := range candidates {
				results = append(results, recommendation{
					Candidate: candidate,
					WatchURL:  candidate.WatchURL(),
				})
			}

			if withStreams && len(results) > 0 {
				resolver, err := ctx.newStreamResolver()
				if err != nil {
					return err
				}
				for i := range results {
					if stream, ok := resolver.Resolve(cmd.Context(), results[i].VideoID); ok {
						results[i].StreamURL = stream.URL
					}
				}
			}

			if jsonOutput {
				return writeJSON(cmd, results)
			}
			renderRecommendations(cmd, results, withStreams, tracker.Remaining())
			return nil
		},
	}

	cmd.Flags().StringVarP(&keywordsFlag, "keywords", "k", "", "Comma-separated keywords (skips LLM extraction)")
	cmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Read the interest description from a file, or - for stdin")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	cmd.Flags().BoolVar(&withStreams, "streams", false, "Also resolve playable audio stream URLs")
	return cmd
}

// resolveKeywords prefers the explicit --keywords list and falls back to
// LLM extraction over the description argument or --input text.
func resolveKeywords(cmd *cobra.Command, ctx *commandContext, keywordsFlag, inputFlag string, args []string) ([]string, error) {
	if strings.TrimSpace(keywordsFlag) != "" {
		return keywords.ParseList(keywordsFlag)
	}

	description := ""
	if len(args) > 0 {
		description = args[0]
	}
	if strings.TrimSpace(inputFlag) != "" {
		text, err := readDescription(cmd, inputFlag)
		if err != nil {
			return nil, err
		}
		description = text
	}
	if strings.TrimSpace(description) == "" {
		return nil, errors.New("provide an interest description, --input, or --keywords")
	}

	client, err := ctx.newLLMClient()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	extractor := keywords.NewExtractor(client, logging.NewComponentLogger(logger, "keywords"))
	return extractor.Extract(cmd.Context(), description)
}

func readDescription(cmd *cobra.Command, source string) (string, error) {
	if source == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read description from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("read description file: %w", err)
	}
	return string(data), nil
}

func renderRecommendations(cmd *cobra.Command, results []recommendation, withStreams bool, remaining int) {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No episodes found.")
		return
	}

	headers := []string{"#", "TITLE", "CHANNEL", "WATCH"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}
	if withStreams {
		headers = append(headers, "STREAM")
		aligns = append(aligns, alignLeft)
	}

	rows := make([][]string, 0, len(results))
	for i, result := range results {
		row := []string{
			strconv.Itoa(i + 1),
			truncate(result.Title, 60),
			truncate(result.Channel, 28),
			result.WatchURL,
		}
		if withStreams {
			stream := result.StreamURL
			if stream == "" {
				stream = "(absent)"
			}
			row = append(row, truncate(stream, 48))
		}
		rows = append(rows, row)
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
	fmt.Fprintf(out, "%d search calls remaining today\n", remaining)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
