package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uyouii/agedepth-algorithms/ensemble"
	"github.com/uyouii/agedepth-algorithms/kde"
)

func (a *app) accrateCmd() *cobra.Command {
	var (
		depths []float64
		ages   []float64
		invert bool
	)
	cmd := &cobra.Command{
		Use:   "accrate <outfile>",
		Short: "Summarize accumulation rates at depths or ages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(depths) == 0 && len(ages) == 0 {
				return fmt.Errorf("give at least one --depth or --age")
			}
			e, err := a.loadEnsemble(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			for _, d := range depths {
				a.printRates(cmd, fmt.Sprintf("depth %s", formatFloat(d)), e.AccrateAtDepth(ctx, d), invert)
			}
			for _, age := range ages {
				a.printRates(cmd, fmt.Sprintf("age %s", formatFloat(age)), e.AccrateAtAge(ctx, age), invert)
			}
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&depths, "depth", nil, "depths to summarize")
	cmd.Flags().Float64SliceVar(&ages, "age", nil, "cal BP ages to summarize")
	cmd.Flags().BoolVar(&invert, "invert", false, "report length/time instead of time/length")
	ensembleFlags(cmd)
	return cmd
}

func (a *app) printRates(cmd *cobra.Command, label string, rates []float64, invert bool) {
	if invert {
		rates = ensemble.Invert(rates)
	}
	summary, err := kde.Summarize(cmd.Context(), rates, kde.SummaryOptions{Prob: a.cfg.prob})
	if err != nil {
		warnf(cmd.ErrOrStderr(), "%s: %v", label, err)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: mean %s, %g%% range %s-%s (n=%d)\n", bold("%s", label),
		formatFloat(summary.Mean), 100*a.cfg.prob,
		formatFloat(summary.Interval.Lower.Value), formatFloat(summary.Interval.Upper.Value), summary.N)
}
