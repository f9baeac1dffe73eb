package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uyouii/agedepth-algorithms/ghost"
	"github.com/uyouii/agedepth-algorithms/model"
	"github.com/uyouii/agedepth-algorithms/utils"
)

func (a *app) ghostCmd() *cobra.Command {
	var (
		axis              string
		from, to, by      float64
		fluxFile          string
		proxy             int
		invert, densities bool
	)
	cmd := &cobra.Command{
		Use:   "ghost <outfile>",
		Short: "Density field of accumulation rates or fluxes",
		Long: `Summarize accumulation rates against depth or age, or proxy fluxes
against age, at every query point from --from to --to in steps of --by.
Prints one csv row per point, or the scaled densities with --densities.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !(by > 0) || to < from {
				return fmt.Errorf("need --from <= --to and a positive --by")
			}
			e, err := a.loadEnsemble(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			points := utils.Seq(from, to, by)
			opts := a.cfg.ghostOptions()
			opts.Invert = invert

			var field *model.DensityField
			switch axis {
			case "depth":
				field, err = ghost.AccrateDepth(ctx, e, points, opts)
			case "age":
				field, err = ghost.AccrateAge(ctx, e, points, opts)
			case "flux":
				if fluxFile == "" {
					return fmt.Errorf("flux ghost needs --flux")
				}
				f, ferr := os.Open(fluxFile)
				if ferr != nil {
					return ferr
				}
				profile, ferr := ghost.ReadFluxProfile(f, proxy)
				f.Close()
				if ferr != nil {
					return fmt.Errorf("%s: %w", fluxFile, ferr)
				}
				field, err = ghost.FluxAge(ctx, e, profile, points, opts)
			default:
				return fmt.Errorf("unknown axis %q, use depth, age or flux", axis)
			}
			if err != nil {
				return err
			}

			printField(cmd, axis, field, densities)
			return nil
		},
	}
	cmd.Flags().StringVar(&axis, "axis", "depth", "query axis: depth, age or flux")
	cmd.Flags().Float64Var(&from, "from", 0, "first query point")
	cmd.Flags().Float64Var(&to, "to", 0, "last query point")
	cmd.Flags().Float64Var(&by, "by", 1, "query step")
	cmd.Flags().StringVar(&fluxFile, "flux", "", "csv of proxy concentrations against depth")
	cmd.Flags().IntVar(&proxy, "proxy", 1, "proxy column of the flux file, 1 is the first after depth")
	cmd.Flags().BoolVar(&invert, "invert", false, "report length/time instead of time/length")
	cmd.Flags().BoolVar(&densities, "densities", false, "print the scaled densities")
	ensembleFlags(cmd)
	return cmd
}

func printField(cmd *cobra.Command, axis string, field *model.DensityField, densities bool) {
	out := cmd.OutOrStdout()
	if densities {
		fmt.Fprintf(out, "%s,x,density\n", axis)
		for i, p := range field.QueryPoints {
			for _, d := range field.Densities[i] {
				fmt.Fprintf(out, "%s,%s,%g\n", formatFloat(p), formatFloat(d.X), d.Value)
			}
		}
		return
	}

	fmt.Fprintf(out, "%s,n,lower,mean,upper\n", axis)
	undefined := 0
	for i, p := range field.QueryPoints {
		if !field.Defined(i) {
			undefined++
		}
		fmt.Fprintf(out, "%s,%d,%s,%s,%s\n", formatFloat(p), field.SampleCount[i],
			formatFloat(field.Lower[i]), formatFloat(field.Mean[i]), formatFloat(field.Upper[i]))
	}
	if undefined > 0 {
		warnf(cmd.ErrOrStderr(), "%d of %d points have too few samples", undefined, field.Len())
	}
}
