package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/pagemark/core/config"
	"github.com/gaurav-prasanna/pagemark/core/extract"
	"github.com/gaurav-prasanna/pagemark/core/output"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var flagExtractAll bool

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Write the heading chunks of a page as JSON",
	Long: `Extract fetches a page, finds its main content and writes the
{title, url, chunks} payload that is sent to the summary service.

Examples:
  pagemark extract https://cks.nice.org.uk/topics/headache-assessment/
  pagemark extract https://example.com/guide --all --output_dir ./chunks`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().BoolVar(&flagExtractAll, "all", false, "Process every discovered page on the host")
	extractCmd.Flags().String(config.FlagOutputDir, "", "Output directory (default: current directory)")
	extractCmd.Flags().Int(config.FlagMaxPages, config.DefaultMaxPages, "Page limit with --all")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fetcher := newFetcher()
	load := pageLoader(fetcher)

	urls, err := targets(ctx, args[0], flagExtractAll, fetcher)
	if err != nil {
		return err
	}
	writer, err := output.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	var failed int
	for i, pageURL := range urls {
		doc, err := load(ctx, pageURL)
		if err != nil {
			log.Error().Err(err).Str("url", pageURL).Msg("page failed")
			failed++
			continue
		}
		content, err := extract.Extract(doc)
		if err != nil {
			log.Error().Err(err).Str("url", pageURL).Msg("extract failed")
			failed++
			continue
		}
		data, err := json.MarshalIndent(content, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling chunks: %w", err)
		}

		var path string
		if flagExtractAll {
			path, err = writer.WriteMirror(pageURL, "chunks", data, ".json")
		} else {
			path, err = writer.WritePage(pageURL, "chunks", data, ".json")
		}
		if err != nil {
			log.Error().Err(err).Str("url", pageURL).Msg("write failed")
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] %d chunks -> %s\n", i+1, len(urls), len(content.Chunks), path)
	}
	return summarizeFailures(failed, len(urls))
}

func summarizeFailures(failed, total int) error {
	if failed == 0 {
		return nil
	}
	if failed == total {
		return fmt.Errorf("all %d pages failed", total)
	}
	log.Warn().Msgf("%d/%d pages failed", failed, total)
	return nil
}
