package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/uyouii/agedepth-algorithms/curve"
	"github.com/uyouii/agedepth-algorithms/ensemble"
	"github.com/uyouii/agedepth-algorithms/utils"
)

type app struct {
	v          *viper.Viper
	cfg        *settings
	configFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: newViper()}

	root := &cobra.Command{
		Use:               "agedepth",
		Short:             "Calibrate dates and summarize sampled age-depth models",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: ./agedepth.yaml)")
	flags.String("ccdir", "", "directory holding the calibration curves")
	flags.Int("workers", 0, "query points summarized at once (default: GOMAXPROCS)")
	flags.Float64("prob", 0, "mass of the credible intervals")
	flags.Bool("verbose", false, "log at debug level")

	root.AddCommand(a.calibrateCmd())
	root.AddCommand(a.accrateCmd())
	root.AddCommand(a.ghostCmd())
	root.AddCommand(a.pbCmd())
	root.AddCommand(a.mixCmd())
	root.AddCommand(a.convertCmd())
	return root
}

// setup binds the flags that were set onto the config, loads it and attaches
// a logger to the command context.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	if err := readConfig(a.v, a.configFile); err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	cfg, err := settingsFrom(a.v)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg

	logger, err := newLogger(a.v.GetBool(cfgKeyVerbose))
	if err != nil {
		return err
	}
	cmd.SetContext(utils.WithLogger(cmd.Context(), logger))
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	config.Encoding = "console"
	return config.Build()
}

func (a *app) store() *curve.Store {
	return curve.NewDirStore(a.cfg.curveDir)
}

// loadEnsemble reads sampler output using the configured top depth, segment
// thickness and segment count.
func (a *app) loadEnsemble(path string) (*ensemble.Ensemble, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	samples, err := ensemble.ReadOut(f, a.cfg.segments)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ensemble.New(samples, a.cfg.depthMin, a.cfg.thickness)
}

// ensembleFlags registers the flags describing the sampled model.
func ensembleFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("d-min", 0, "depth of the top of the model")
	cmd.Flags().Float64("thick", 0, "segment thickness")
	cmd.Flags().Int("k", 0, "number of segments (default: every column after the start age)")
}
