package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/uyouii/agedepth-algorithms/kde"
	"github.com/uyouii/agedepth-algorithms/pb"
)

func (a *app) pbCmd() *cobra.Command {
	var (
		top, bottom, density float64
		influx, supported    float64
	)
	cmd := &cobra.Command{
		Use:   "pb <outfile>",
		Short: "Modelled Pb-210 activity of a slice",
		Long: `Evaluate the Pb-210 forward model for one slice of the core with every
iteration of the sampled age-depth model, and summarize the activities.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.loadEnsemble(args[0])
			if err != nil {
				return err
			}

			n := e.Iterations()
			influxes, supports := make([]float64, n), make([]float64, n)
			for i := range influxes {
				influxes[i], supports[i] = influx, supported
			}
			slices := []pb.Slice{{Top: top, Bottom: bottom, Density: density}}
			activities, err := pb.ModelledActivities(cmd.Context(), e, slices, influxes, supports, a.cfg.unit, a.cfg.theta0)
			if err != nil {
				return err
			}

			summary, err := kde.Summarize(cmd.Context(), mat.Col(nil, 0, activities), kde.SummaryOptions{Prob: a.cfg.prob})
			if err != nil {
				warnf(cmd.ErrOrStderr(), "slice %s-%s: %v", formatFloat(top), formatFloat(bottom), err)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: mean %s %s, %g%% range %s-%s\n",
				bold("slice %s-%s", formatFloat(top), formatFloat(bottom)), formatFloat(summary.Mean), a.cfg.unit,
				100*a.cfg.prob, formatFloat(summary.Interval.Lower.Value), formatFloat(summary.Interval.Upper.Value))
			return nil
		},
	}
	cmd.Flags().Float64Var(&top, "top", 0, "slice top depth")
	cmd.Flags().Float64Var(&bottom, "bottom", 1, "slice bottom depth")
	cmd.Flags().Float64Var(&density, "density", 1, "dry bulk density of the slice")
	cmd.Flags().Float64Var(&influx, "influx", 100, "Pb-210 influx")
	cmd.Flags().Float64Var(&supported, "supported", 0, "supported activity")
	cmd.Flags().Float64("theta0", 0, "age of the core top")
	cmd.Flags().Bool("bqkg", true, "activities in Bq/kg, otherwise dpm/g")
	ensembleFlags(cmd)
	return cmd
}
