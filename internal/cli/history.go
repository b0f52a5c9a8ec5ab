package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/matstat/internal/service"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent computations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := opts.client().History(cmd.Context(), source)
			if err != nil {
				return err
			}
			if opts.format == FormatText {
				return printHistory(cmd.OutOrStdout(), summary)
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "Only entries with this source")
	return cmd
}

func newClearCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the server history (requires HISTORY_ALLOW_CLEAR on the server)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().ClearHistory(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
			return err
		},
	}
}

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := opts.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			if opts.format == FormatText {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", health.Service, health.Status)
				return err
			}
			return writeJSON(cmd.OutOrStdout(), health)
		},
	}
}

func printHistory(w io.Writer, summary *service.HistorySummary) error {
	fmt.Fprintf(w, "total processed: %d\n", summary.TotalProcessed)
	if len(summary.History) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tSOURCE\tDIMS\tMAX\tMIN\tAVG\tSUM")
	for _, e := range summary.History {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%g\t%g\t%g\t%g\n",
			e.ID, e.Timestamp.Format(service.TimeFormat), e.Source, e.MatrixDimensions,
			e.Stats.Max, e.Stats.Min, e.Stats.Avg, e.Stats.Sum)
	}
	return tw.Flush()
}
