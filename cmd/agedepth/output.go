package main

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fatih/color"

	"github.com/uyouii/agedepth-algorithms/utils"
)

var (
	bold = color.New(color.Bold).SprintfFunc()
	warn = color.New(color.FgYellow).SprintfFunc()
)

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NA"
	}
	return strconv.FormatFloat(utils.FormatFloat(f, 4), 'f', -1, 64)
}

func warnf(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, warn("warning: "+format, a...))
}
