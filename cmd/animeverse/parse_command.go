package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"animeverse/internal/config"
	"animeverse/internal/media"
	"animeverse/internal/metrics"
	"animeverse/internal/recommend"
)

// parseOutput is the --json shape of the parse command.
type parseOutput struct {
	Document recommend.Document `json:"document"`
	Empty    bool               `json:"empty"`
	Top      []media.Card       `json:"top_cards"`
	Gems     []media.Card       `json:"hidden_gem_cards"`
}

func newParseCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "parse [file|-]",
		Short:       "Parse a saved recommendation reply",
		Long:        "Parse a recommendation reply saved from the model. Reads stdin when no file or \"-\" is given.",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readReply(cmd, args)
			if err != nil {
				return err
			}
			doc := recommend.Parse(raw)
			metrics.RecordParse(len(doc.Top), len(doc.HiddenGems), doc.Empty())
			top := media.Cards(doc.Top)
			gems := media.Cards(doc.HiddenGems)

			if jsonOutput {
				return writeJSON(cmd, parseOutput{Document: doc, Empty: doc.Empty(), Top: top, Gems: gems})
			}
			out := cmd.OutOrStdout()
			renderRecommendations(out, raw, doc, top, gems, renderOptions{
				colorize: shouldColorize(out),
				width:    terminalWidth(out),
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func readReply(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	path, err := config.ExpandPath(args[0])
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read reply file: %w", err)
	}
	return string(data), nil
}
