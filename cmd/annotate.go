package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/gaurav-prasanna/pagemark/core/annotate"
	"github.com/gaurav-prasanna/pagemark/core/config"
	"github.com/gaurav-prasanna/pagemark/core/output"
	"github.com/gaurav-prasanna/pagemark/core/relay"
	"github.com/gaurav-prasanna/pagemark/core/render"
	"github.com/gaurav-prasanna/pagemark/core/summarize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagMode        string
	flagSnapshot    string
	flagFormat      string
	flagAnnotateAll bool
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <url>",
	Short: "Summarize a page and highlight the passages the summary cites",
	Long: `Annotate fetches a page, asks the summary service for a snapshot in the
chosen reading mode, highlights the cited passages and writes the result.

Examples:
  pagemark annotate https://cks.nice.org.uk/topics/headache-assessment/ --mode red_flags
  pagemark annotate https://example.com/guide --snapshot snap.json --format markdown
  pagemark annotate https://example.com/guide --all --format json --output_dir ./out`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)
	f := annotateCmd.Flags()
	f.StringVar(&flagMode, "mode", string(core.ModeRedFlags), "Reading mode: red_flags, management or prescribing")
	f.StringVar(&flagSnapshot, "snapshot", "", "Use a saved snapshot JSON file instead of calling the summarizer")
	f.StringVar(&flagFormat, "format", "html", "Output format: html, markdown, json or pdf")
	f.BoolVar(&flagAnnotateAll, "all", false, "Process every discovered page on the host")
	f.String(config.FlagOutputDir, "", "Output directory (default: current directory)")
	f.Int(config.FlagMaxPages, config.DefaultMaxPages, "Page limit with --all")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	mode, err := core.ParseMode(flagMode)
	if err != nil {
		return err
	}
	if flagSnapshot != "" && flagAnnotateAll {
		return fmt.Errorf("--snapshot and --all are mutually exclusive")
	}
	styles := annotate.DefaultStyles()
	renderer, err := render.ForFormat(flagFormat, styles)
	if err != nil {
		return err
	}

	var (
		snap *core.Snapshot
		sum  core.Summarizer
	)
	if flagSnapshot != "" {
		if snap, err = loadSnapshot(flagSnapshot); err != nil {
			return err
		}
	} else if sum, err = newSummarizer(); err != nil {
		return err
	}

	fetcher := newFetcher()
	load := pageLoader(fetcher)
	urls, err := targets(ctx, args[0], flagAnnotateAll, fetcher)
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
		sess := relay.NewSession(doc, relay.WithLogger(log.Logger), relay.WithStyles(styles))

		var rep *core.Report
		if snap != nil {
			content, cerr := sess.PageContent()
			if cerr != nil {
				return fmt.Errorf("extract: %w", cerr)
			}
			rep, err = sess.ApplySnapshot(content, mode, snap)
		} else {
			rep, err = sess.Annotate(ctx, sum, mode)
		}
		if errors.Is(err, summarize.ErrRateLimited) {
			return err
		}
		if err != nil {
			log.Error().Err(err).Str("url", pageURL).Msg("annotate failed")
			failed++
			continue
		}

		data, err := renderer.Render(rep)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		var path string
		if flagAnnotateAll {
			path, err = writer.WriteMirror(pageURL, string(mode), data, renderer.Extension())
		} else {
			path, err = writer.WritePage(pageURL, string(mode), data, renderer.Extension())
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] %d/%d highlights placed -> %s\n",
			i+1, len(urls), len(rep.AppliedIDs), len(rep.Highlights), path)
	}
	return summarizeFailures(failed, len(urls))
}

func loadSnapshot(path string) (*core.Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	snap, err := summarize.ParseSnapshot(string(b))
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return snap, nil
}
