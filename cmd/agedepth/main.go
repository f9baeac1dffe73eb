// Package main provides the agedepth CLI: radiocarbon calibration,
// accumulation rates, ghost plots and the Pb-210 forward model over a sampled
// age-depth model.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}
