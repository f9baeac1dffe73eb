package main

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"github.com/uyouii/agedepth-algorithms/calib"
	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/curve"
	"github.com/uyouii/agedepth-algorithms/ghost"
	"github.com/uyouii/agedepth-algorithms/model"
	"github.com/uyouii/agedepth-algorithms/pb"
)

const (
	configFileName = "agedepth"
	envPrefix      = "AGEDEPTH"

	cfgKeyCurveDir  = "ccdir"
	cfgKeyCurve     = "cc"
	cfgKeyPostbomb  = "postbomb"
	cfgKeyDeltaR    = "delta_r"
	cfgKeyDeltaSTD  = "delta_std"
	cfgKeyNormal    = "normal"
	cfgKeyTA        = "t_a"
	cfgKeyTB        = "t_b"
	cfgKeyCutoff    = "cutoff"
	cfgKeyProb      = "prob"
	cfgKeyWorkers   = "workers"
	cfgKeyDepthMin  = "d_min"
	cfgKeyThickness = "thick"
	cfgKeySegments  = "k"
	cfgKeyTheta0    = "theta0"
	cfgKeyBqKg      = "bqkg"
	cfgKeyVerbose   = "verbose"
)

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"ccdir":     cfgKeyCurveDir,
	"cc":        cfgKeyCurve,
	"postbomb":  cfgKeyPostbomb,
	"delta-r":   cfgKeyDeltaR,
	"delta-std": cfgKeyDeltaSTD,
	"normal":    cfgKeyNormal,
	"t-a":       cfgKeyTA,
	"t-b":       cfgKeyTB,
	"cutoff":    cfgKeyCutoff,
	"prob":      cfgKeyProb,
	"workers":   cfgKeyWorkers,
	"d-min":     cfgKeyDepthMin,
	"thick":     cfgKeyThickness,
	"k":         cfgKeySegments,
	"theta0":    cfgKeyTheta0,
	"bqkg":      cfgKeyBqKg,
	"verbose":   cfgKeyVerbose,
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(cfgKeyCurveDir, "curves")
	v.SetDefault(cfgKeyCurve, model.CurveIntCal20.String())
	v.SetDefault(cfgKeyPostbomb, 0)
	v.SetDefault(cfgKeyDeltaR, 0.0)
	v.SetDefault(cfgKeyDeltaSTD, 0.0)
	v.SetDefault(cfgKeyNormal, false)
	v.SetDefault(cfgKeyTA, calib.DefaultTA)
	v.SetDefault(cfgKeyTB, calib.DefaultTB)
	v.SetDefault(cfgKeyCutoff, calib.DefaultCutoff)
	v.SetDefault(cfgKeyProb, ghost.DefaultProb)
	v.SetDefault(cfgKeyWorkers, 0)
	v.SetDefault(cfgKeyDepthMin, 0.0)
	v.SetDefault(cfgKeyThickness, 5.0)
	v.SetDefault(cfgKeySegments, 0)
	v.SetDefault(cfgKeyTheta0, 0.0)
	v.SetDefault(cfgKeyBqKg, true)
	v.SetDefault(cfgKeyVerbose, false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// readConfig reads file, or agedepth.yaml from the working directory when
// file is empty. A missing default config file is not an error.
func readConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
		return v.ReadInConfig()
	}
	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

type settings struct {
	curveDir  string
	defaults  calib.Defaults
	prob      float64
	workers   int
	depthMin  float64
	thickness float64
	segments  int
	theta0    float64
	unit      pb.Unit
}

func settingsFrom(v *viper.Viper) (*settings, error) {
	cc, err := curve.ParseCurveID(v.GetString(cfgKeyCurve))
	if err != nil {
		return nil, err
	}
	postbomb, err := curve.PostbombIDFromCode(v.GetInt(cfgKeyPostbomb))
	if err != nil {
		return nil, err
	}

	defaults := calib.DefaultDefaults()
	defaults.Curve = cc
	defaults.Postbomb = postbomb
	defaults.Offset = model.Offset{Mean: v.GetFloat64(cfgKeyDeltaR), Error: v.GetFloat64(cfgKeyDeltaSTD)}
	defaults.Noise = model.NoiseModel{
		Normal: v.GetBool(cfgKeyNormal),
		TA:     v.GetFloat64(cfgKeyTA),
		TB:     v.GetFloat64(cfgKeyTB),
	}
	defaults.Options.Cutoff = v.GetFloat64(cfgKeyCutoff)
	if err := calib.ValidateNoiseModel(defaults.Noise); err != nil {
		return nil, err
	}

	s := &settings{
		curveDir:  v.GetString(cfgKeyCurveDir),
		defaults:  defaults,
		prob:      v.GetFloat64(cfgKeyProb),
		workers:   v.GetInt(cfgKeyWorkers),
		depthMin:  v.GetFloat64(cfgKeyDepthMin),
		thickness: v.GetFloat64(cfgKeyThickness),
		segments:  v.GetInt(cfgKeySegments),
		theta0:    v.GetFloat64(cfgKeyTheta0),
		unit:      pb.BqPerKg,
	}
	if !v.GetBool(cfgKeyBqKg) {
		s.unit = pb.DpmPerGram
	}
	if s.prob <= 0 || s.prob >= 1 {
		return nil, common.ConfigurationErrorf("%s must be in (0, 1), got %v", cfgKeyProb, s.prob)
	}
	return s, nil
}

func (s *settings) ghostOptions() ghost.Options {
	opts := ghost.DefaultOptions()
	opts.Prob = s.prob
	opts.Workers = s.workers
	return opts
}
