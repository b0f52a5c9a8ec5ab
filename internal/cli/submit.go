package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/matstat/internal/client"
	"github.com/GriffinCanCode/matstat/internal/domain/matrix"
	"github.com/GriffinCanCode/matstat/internal/service"
)

type submitFlags struct {
	inline    string
	q, r      string
	source    string
	tolerance float64
}

func newSubmitCmd(opts *options) *cobra.Command {
	var f submitFlags
	cmd := &cobra.Command{
		Use:   "submit [file]",
		Short: "Compute statistics of one matrix",
		Long: "Reads a matrix from a json, yaml or toml file (\"-\" for stdin) or from --matrix,\n" +
			"and prints max, min, avg, sum and the diagonal analysis.",
		Example: "  matstat submit --matrix '[[1,2],[3,4]]' --source cli\n  matstat submit matrix.yaml",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input(cmd, args)
			if err != nil {
				return err
			}
			if in.Matrix == nil {
				return fmt.Errorf("input has no matrix; use pair for q/r input")
			}

			res, err := opts.client().Submit(cmd.Context(), in.Matrix, submitOptions(cmd, in, f)...)
			if err != nil {
				return err
			}
			if opts.format == FormatText {
				return printSingle(cmd.OutOrStdout(), res)
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&f.inline, "matrix", "m", "", "Matrix as JSON, e.g. '[[1,2],[3,4]]'")
	f.bindCommon(cmd)
	return cmd
}

func newPairCmd(opts *options) *cobra.Command {
	var f submitFlags
	cmd := &cobra.Command{
		Use:     "pair [file]",
		Short:   "Compute combined statistics of a Q/R pair",
		Long:    "Reads q and r from a json, yaml or toml file or from --q and --r.",
		Example: "  matstat pair --q '[[1,0],[0,1]]' --r '[[2,3],[0,4]]'\n  matstat pair qr.toml",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input(cmd, args)
			if err != nil {
				return err
			}
			if !in.IsPair() {
				return fmt.Errorf("input has no q/r pair; use submit for a single matrix")
			}

			res, err := opts.client().SubmitPair(cmd.Context(), in.Q, in.R, submitOptions(cmd, in, f)...)
			if err != nil {
				return err
			}
			if opts.format == FormatText {
				return printPair(cmd.OutOrStdout(), res)
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&f.q, "q", "", "Q matrix as JSON")
	cmd.Flags().StringVar(&f.r, "r", "", "R matrix as JSON")
	f.bindCommon(cmd)
	return cmd
}

func (f *submitFlags) bindCommon(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "Source label recorded in history")
	cmd.Flags().Float64Var(&f.tolerance, "tolerance", matrix.DefaultTolerance, "Off-diagonal tolerance")
}

// input reads the file argument, or builds the input from inline flags.
func (f *submitFlags) input(cmd *cobra.Command, args []string) (*Input, error) {
	inlineSet := f.inline != "" || f.q != "" || f.r != ""
	switch {
	case len(args) == 1 && inlineSet:
		return nil, fmt.Errorf("give either a file or inline matrices, not both")
	case len(args) == 1:
		return ReadInput(args[0], cmd.InOrStdin())
	case f.inline != "":
		m, err := parseInline("matrix", f.inline)
		if err != nil {
			return nil, err
		}
		return &Input{Matrix: m}, nil
	case f.q != "" || f.r != "":
		q, err := parseInline("q", f.q)
		if err != nil {
			return nil, err
		}
		r, err := parseInline("r", f.r)
		if err != nil {
			return nil, err
		}
		return &Input{Q: q, R: r}, nil
	default:
		return nil, fmt.Errorf("no input: pass a file or inline matrices")
	}
}

// submitOptions merges file values with flags; explicit flags win.
func submitOptions(cmd *cobra.Command, in *Input, f submitFlags) []client.SubmitOption {
	var out []client.SubmitOption

	source := in.Source
	if cmd.Flags().Changed("source") {
		source = f.source
	}
	if source != "" {
		out = append(out, client.WithSource(source))
	}

	switch {
	case cmd.Flags().Changed("tolerance"):
		out = append(out, client.WithTolerance(f.tolerance))
	case in.Tolerance != nil:
		out = append(out, client.WithTolerance(*in.Tolerance))
	}
	return out
}

func printSingle(w io.Writer, res *service.SingleResult) error {
	_, err := fmt.Fprintf(w,
		"max: %g\nmin: %g\navg: %g\nsum: %g\ndiagonal: %v\nmainDiagonalSum: %g\nisDiagonal: %t\nisSquare: %t\nsource: %s\nprocessedAt: %s\n",
		res.Max, res.Min, res.Avg, res.Sum,
		res.Diagonal, res.MainDiagonalSum, res.IsDiagonal, res.IsSquare,
		res.Source, res.ProcessedAt,
	)
	return err
}

func printPair(w io.Writer, res *service.PairResult) error {
	_, err := fmt.Fprintf(w,
		"max: %g\nmin: %g\navg: %g\nsum: %g\nisDiagonalQ: %t\nisDiagonalR: %t\nsource: %s\nprocessedAt: %s\n",
		res.Max, res.Min, res.Avg, res.Sum,
		res.IsDiagonalQ, res.IsDiagonalR,
		res.Source, res.ProcessedAt,
	)
	return err
}
