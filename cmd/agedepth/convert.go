package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uyouii/agedepth-algorithms/calib"
)

type conversion func(value, sdev float64) (float64, float64, error)

var conversions = map[string]conversion{
	"pmc-age": calib.PMCToAge,
	"age-pmc": func(v, s float64) (float64, float64, error) {
		pmc, sd := calib.AgeToPMC(v, s)
		return pmc, sd, nil
	},
	"f14c-age": calib.F14CToAge,
	"age-f14c": func(v, s float64) (float64, float64, error) {
		f, sd := calib.AgeToF14C(v, s)
		return f, sd, nil
	},
	"calbp-bcad": func(v, s float64) (float64, float64, error) {
		return calib.CalBPToBCAD(v), s, nil
	},
	"bcad-calbp": func(v, s float64) (float64, float64, error) {
		return calib.BCADToCalBP(v), s, nil
	},
}

func conversionNames() []string {
	names := make([]string, 0, len(conversions))
	for name := range conversions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *app) convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <conversion> <value> [error]",
		Short: "Convert between pMC, F14C, radiocarbon ages, cal BP and BC/AD",
		Long:  "Conversions: " + strings.Join(conversionNames(), ", "),
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			convert, ok := conversions[strings.ToLower(args[0])]
			if !ok {
				return fmt.Errorf("unknown conversion %q, use one of %s", args[0], strings.Join(conversionNames(), ", "))
			}
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("value: %w", err)
			}
			sdev := 0.0
			if len(args) == 3 {
				if sdev, err = strconv.ParseFloat(args[2], 64); err != nil {
					return fmt.Errorf("error: %w", err)
				}
			}

			res, resSdev, err := convert(value, sdev)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s ± %s\n", formatFloat(res), formatFloat(resSdev))
			return nil
		},
	}
}
