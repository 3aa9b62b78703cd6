// Package cli implements the adsero terminal client.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/adsero/adsero-assistant/internal/chat"
	"github.com/adsero/adsero-assistant/internal/config"
	"github.com/adsero/adsero-assistant/internal/logging"
	"github.com/adsero/adsero-assistant/internal/sharepoint"
)

// DefaultServerURL is where adsero-server listens by default
const DefaultServerURL = "http://localhost:3000"

type rootOptions struct {
	serverURL string
	verbose   bool
	timeout   time.Duration
}

func (o *rootOptions) logger(stderr io.Writer) *logrus.Entry {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	return logging.Component(logging.NewWithWriter(config.LogConfig{Level: level}, stderr), "cli")
}

func (o *rootOptions) lookupClient() *sharepoint.Client {
	return sharepoint.NewClient(o.serverURL, &http.Client{Timeout: o.timeout})
}

// NewRootCommand builds the adsero command tree
func NewRootCommand(in io.Reader, out, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "adsero",
		Short: "Terminal client for the Adsero AI assistant",
		Long: `Chat with the Adsero legal assistant and look up SharePoint documents
and reports from the terminal.

Quick Start:
  adsero chat                 # interactive chat
  adsero docs contract        # documents matching "contract"
  adsero reports              # all reports`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.serverURL, "server", envOr("ADSERO_SERVER_URL", DefaultServerURL), "Assistant server URL")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Timeout for lookup requests")

	root.AddCommand(
		newChatCommand(opts, in),
		newLookupCommand(opts, sharepoint.KindDocuments, "docs", "List SharePoint documents"),
		newLookupCommand(opts, sharepoint.KindReports, "reports", "List generated reports"),
	)
	return root
}

func newChatCommand(opts *rootOptions, in io.Reader) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			// Streams are bounded by the server, not by a client timeout
			streamer := chat.NewHTTPStreamer(opts.serverURL, &http.Client{})
			repl := NewREPL(streamer, opts.lookupClient(), cmd.OutOrStdout(), opts.logger(cmd.ErrOrStderr()))
			return repl.Run(ctx, in)
		},
	}
}

func newLookupCommand(opts *rootOptions, kind sharepoint.Kind, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [query]",
		Short: short,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			result, err := opts.lookupClient().Lookup(cmd.Context(), kind, query)
			if err != nil {
				return fmt.Errorf("%s lookup: %w", use, err)
			}
			renderResult(cmd.OutOrStdout(), newStyles(cmd.OutOrStdout()), result)
			return nil
		},
	}
}

// Execute runs the adsero command
func Execute() {
	root := NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
