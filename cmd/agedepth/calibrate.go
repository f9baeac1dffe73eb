package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uyouii/agedepth-algorithms/calib"
	"github.com/uyouii/agedepth-algorithms/datefile"
	"github.com/uyouii/agedepth-algorithms/model"
)

var shapes = map[string]datefile.Shape{
	"auto":     datefile.ShapeAuto,
	"single":   datefile.ShapeSingle,
	"mixed":    datefile.ShapeMixed,
	"combined": datefile.ShapeCombined,
}

func (a *app) calibrateCmd() *cobra.Command {
	var (
		shape string
		pmf   bool
	)
	cmd := &cobra.Command{
		Use:   "calibrate <datefile>",
		Short: "Calibrate a table of dates",
		Long: `Calibrate every date of a comma separated date table. Calendar dates and
Pb-210 activities are spread over an identity curve.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := shapes[strings.ToLower(shape)]
			if !ok {
				return fmt.Errorf("unknown table shape %q", shape)
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			records, err := datefile.Read(f, s)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			dists, err := calib.CalibrateBatch(cmd.Context(), a.store(), records, a.cfg.defaults)
			if err != nil {
				return err
			}
			if pmf {
				fmt.Fprintln(out, "id,depth,cal_bp,prob")
				for _, d := range dists {
					for i := range d.Ages {
						fmt.Fprintf(out, "%s,%s,%s,%g\n", d.ID, formatFloat(d.Depth), formatFloat(d.Ages[i]), d.Probs[i])
					}
				}
				return nil
			}
			for _, d := range dists {
				printDistribution(cmd, d, a.cfg.prob)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&shape, "shape", "auto", "date table shape: auto, single, mixed or combined")
	cmd.Flags().BoolVar(&pmf, "pmf", false, "print the calibrated distributions as csv")
	cmd.Flags().String("cc", "", "default calibration curve (IntCal20, Marine20, SHCal20, mixed, none)")
	cmd.Flags().Int("postbomb", 0, "postbomb curve 1-5 (NH1, NH2, NH3, SH1-2, SH3)")
	cmd.Flags().Float64("delta-r", 0, "default reservoir offset")
	cmd.Flags().Float64("delta-std", 0, "default reservoir offset error")
	cmd.Flags().Bool("normal", false, "gaussian instead of student-t likelihood")
	cmd.Flags().Float64("t-a", 0, "student-t shape a")
	cmd.Flags().Float64("t-b", 0, "student-t shape b, must equal t-a + 1")
	cmd.Flags().Float64("cutoff", 0, "drop calendar ages below this probability")
	return cmd
}

func printDistribution(cmd *cobra.Command, d *model.CalibratedDistribution, prob float64) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold("%s (depth %s)", d.ID, formatFloat(d.Depth)))
	fmt.Fprintf(out, "  mean %s cal BP, sd %s, mode %s (%s BC/AD)\n",
		formatFloat(calib.Mean(d)), formatFloat(calib.StdDev(d)), formatFloat(calib.Mode(d)),
		formatFloat(calib.CalBPToBCAD(calib.Mode(d))))
	fmt.Fprintf(out, "  %g%% hpd:", 100*prob)
	for _, r := range calib.HPD(d, prob) {
		fmt.Fprintf(out, " %s-%s (%.1f%%)", formatFloat(r.From), formatFloat(r.To), 100*r.Prob)
	}
	fmt.Fprintln(out)
}
