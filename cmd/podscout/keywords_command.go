package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podscout/internal/keywords"
	"podscout/internal/logging"
)

func newKeywordsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "keywords <description>",
		Short: "Extract search keywords from an interest description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newLLMClient()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			extractor := keywords.NewExtractor(client, logging.NewComponentLogger(logger, "keywords"))
			extracted, err := extractor.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, map[string][]string{"keywords": extracted})
			}
			out := cmd.OutOrStdout()
			for _, keyword := range extracted {
				fmt.Fprintln(out, keyword)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of plain lines")
	return cmd
}
