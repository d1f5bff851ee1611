package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/gaurav-prasanna/pagemark/core/annotate"
	"github.com/gaurav-prasanna/pagemark/core/config"
	"github.com/gaurav-prasanna/pagemark/core/relay"
	"github.com/gaurav-prasanna/pagemark/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve page sessions over HTTP",
	Long: `Serve keeps parsed pages in memory and answers getPageContent,
applyPageEnhancements and scrollToHighlight messages for them over HTTP.

Routes:
  POST   /v1/pages                 open a page from {"url"} or {"html"}
  POST   /v1/pages/{id}/messages   relay a message
  POST   /v1/pages/{id}/annotate   summarize and highlight ({"mode"})
  GET    /v1/pages/{id}/html       annotated page
  DELETE /v1/pages/{id}            close a page
  GET    /health`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String(config.FlagListen, config.DefaultListen, "Listen address")
	serveCmd.Flags().Int(config.FlagSessions, config.DefaultSessions, "Pages kept in memory")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	styles := annotate.DefaultStyles()
	load := pageLoader(newFetcher())

	reg, err := relay.NewRegistry(cfg.Sessions, load, log.Logger, relay.WithStyles(styles))
	if err != nil {
		return err
	}

	var sum core.Summarizer
	if s, err := newSummarizer(); err != nil {
		log.Warn().Err(err).Msg("annotate endpoint disabled")
	} else {
		sum = s
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(reg, load, sum, styles, log.Logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Listen).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
