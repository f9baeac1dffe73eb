package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uyouii/agedepth-algorithms/curve"
	"github.com/uyouii/agedepth-algorithms/model"
)

func (a *app) mixCmd() *cobra.Command {
	var (
		cc1, cc2          string
		proportion        float64
		offset, offsetErr float64
		out               string
	)
	cmd := &cobra.Command{
		Use:   "mix",
		Short: "Mix two calibration curves",
		Long: `Blend --cc2, shifted by --offset, into --cc1 on cc1's calendar ages.
The result is written to --out, which defaults to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := a.store()

			id1, err := curve.ParseCurveID(cc1)
			if err != nil {
				return err
			}
			id2, err := curve.ParseCurveID(cc2)
			if err != nil {
				return err
			}
			c1, err := store.Load(ctx, id1)
			if err != nil {
				return err
			}
			c2, err := store.Load(ctx, id2)
			if err != nil {
				return err
			}

			mixed, err := curve.Mix(c1, c2, proportion, model.Offset{Mean: offset, Error: offsetErr})
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return curve.Write(cmd.OutOrStdout(), mixed)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			w := bufio.NewWriter(f)
			if err := curve.Write(w, mixed); err != nil {
				f.Close()
				return err
			}
			if err := w.Flush(); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", mixed.Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&cc1, "cc1", model.CurveIntCal20.String(), "first curve")
	cmd.Flags().StringVar(&cc2, "cc2", model.CurveMarine20.String(), "second curve")
	cmd.Flags().Float64Var(&proportion, "proportion", 0.5, "share of cc1")
	cmd.Flags().Float64Var(&offset, "offset", 0, "offset added to cc2")
	cmd.Flags().Float64Var(&offsetErr, "offset-error", 0, "error of the offset")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}
