// Package cli implements the matstat command line client.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/matstat/internal/client"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/logging"
)

// Output formats
const (
	FormatJSON = "json"
	FormatText = "text"
)

type options struct {
	baseURL string
	token   string
	timeout time.Duration
	retries int
	format  string
	verbose bool
}

// NewRootCmd builds the matstat command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "matstat",
		Short:         "Matrix statistics client",
		Long:          "Submit matrices to a matstat server, read its history and mint development tokens.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != FormatJSON && opts.format != FormatText {
				return fmt.Errorf("unknown format %q (want json or text)", opts.format)
			}
			return nil
		},
	}

	defaults := client.DefaultConfig()
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.baseURL, "url", "u", envOr("MATSTAT_URL", defaults.BaseURL), "Server URL (default: $MATSTAT_URL)")
	flags.StringVarP(&opts.token, "token", "t", os.Getenv("MATSTAT_TOKEN"), "Bearer token (default: $MATSTAT_TOKEN)")
	flags.DurationVar(&opts.timeout, "timeout", defaults.Timeout, "Request timeout")
	flags.IntVar(&opts.retries, "retries", defaults.Retries, "Retries on connection errors and 5xx")
	flags.StringVarP(&opts.format, "format", "f", FormatJSON, "Output format: json or text")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log requests to stderr")

	root.AddCommand(
		newSubmitCmd(opts),
		newPairCmd(opts),
		newHistoryCmd(opts),
		newClearCmd(opts),
		newHealthCmd(opts),
		newTokenCmd(),
	)
	return root
}

func (o *options) client() *client.Client {
	cfg := client.DefaultConfig()
	cfg.BaseURL = o.baseURL
	cfg.Token = o.token
	cfg.Timeout = o.timeout
	cfg.Retries = o.retries
	if o.verbose {
		logger, err := logging.New(logging.Config{
			Level:       "debug",
			Development: true,
			OutputPaths: []string{"stderr"},
		})
		if err == nil {
			cfg.Logger = logger
		}
	}
	return client.New(cfg)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func writeJSON(w io.Writer, v any) error {
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
