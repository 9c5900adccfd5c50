package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dd0wney/graph-analysis/pkg/config"
	"github.com/dd0wney/graph-analysis/pkg/logging"
	"github.com/dd0wney/graph-analysis/pkg/validation"
	"github.com/dd0wney/graph-analysis/pkg/visualization"
)

// usageError is a bad flag or flag combination; main prints usage for it
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// options holds the flags that select pipeline steps. Tunables that can also
// come from the config file live in config.Config.
type options struct {
	graphPath          string
	components         int
	plot               string
	plotOut            string
	simulateFailures   int
	robustnessCheck    int
	robustnessTrials   int
	verifyHomophily    bool
	homophilyAttr      string
	homophilyAlpha     float64
	verifyBalance      bool
	signAttr           string
	temporalSimulation string
	temporalGIF        string
	output             string
	seed               int64
	configPath         string
	metricsOut         string
	logLevel           string

	failuresSet bool // --simulate_failures given, even as 0
	mode        visualization.Mode
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "graph-analysis GRAPH.gml",
		Short: "Analyze an attributed undirected graph",
		Long: `graph-analysis loads a GML graph and computes clustering, neighborhood
overlap, Girvan-Newman components, homophily and structural balance. It can
simulate random edge failures, measure robustness, replay a timestamped
changelog into an animated GIF, plot the graph and write it back out as GML.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usagef("expected exactly one graph file, got %d arguments", len(args))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.graphPath = args[0]
			cfg, err := opts.resolve(cmd.Flags())
			if err != nil {
				var usage *usageError
				if !errors.As(err, &usage) {
					logging.NewJSONLogger(stderr, logging.InfoLevel).Error("invalid configuration", logging.Error(err))
				}
				return err
			}
			return newApp(opts, cfg, stdout, stderr).run()
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	f := cmd.Flags()
	f.SortFlags = false
	f.IntVar(&opts.components, "components", 0, "split the graph into N components by removing highest-betweenness edges")
	f.StringVar(&opts.plot, "plot", "", "plot mode: C (clustering), N (overlap), P (polarity) or T (temporal)")
	f.StringVar(&opts.plotOut, "plot_out", "", "plot image file (default plot_<mode>.png)")
	f.IntVar(&opts.simulateFailures, "simulate_failures", 0, "remove K random edges and report connectivity before and after")
	f.IntVar(&opts.robustnessCheck, "robustness_check", 0, "run repeated trials of K random edge failures")
	f.IntVar(&opts.robustnessTrials, "robustness_trials", defaults.Robustness.Trials, "number of robustness trials")
	f.BoolVar(&opts.verifyHomophily, "verify_homophily", false, "t-test whether nodes with equal attribute values connect more")
	f.StringVar(&opts.homophilyAttr, "homophily_attr", defaults.Homophily.Attribute, "node attribute tested for homophily")
	f.Float64Var(&opts.homophilyAlpha, "homophily_alpha", defaults.Homophily.Alpha, "significance level of the homophily t-test")
	f.BoolVar(&opts.verifyBalance, "verify_balanced_graph", false, "check structural balance of the signed graph")
	f.StringVar(&opts.signAttr, "sign_attr", defaults.Balance.SignAttribute, "edge attribute holding the sign")
	f.StringVar(&opts.temporalSimulation, "temporal_simulation", "", "CSV changelog of timestamped edge additions and removals to replay")
	f.StringVar(&opts.temporalGIF, "temporal_gif", "", "write the replay as an animated GIF")
	f.StringVar(&opts.output, "output", "", "write the annotated graph as GML")
	f.Int64Var(&opts.seed, "seed", defaults.Seed, "random seed for failures, robustness and layout (0 picks one)")
	f.StringVar(&opts.configPath, "config", "", "YAML file with analysis defaults")
	f.StringVar(&opts.metricsOut, "metrics_out", "", "write Prometheus metrics in text format")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides LOG_LEVEL and the config file)")

	return cmd
}

// resolve layers defaults, the config file and explicitly set flags, then
// checks the combination.
func (o *options) resolve(fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	o.failuresSet = fs.Changed("simulate_failures")
	if err := o.validate(fs); err != nil {
		return nil, &usageError{err: err}
	}

	if fs.Changed("seed") {
		cfg.Seed = o.seed
	}
	if fs.Changed("robustness_trials") {
		cfg.Robustness.Trials = o.robustnessTrials
	}
	if fs.Changed("homophily_attr") {
		cfg.Homophily.Attribute = o.homophilyAttr
	}
	if fs.Changed("homophily_alpha") {
		cfg.Homophily.Alpha = o.homophilyAlpha
	}
	if fs.Changed("sign_attr") {
		cfg.Balance.SignAttribute = o.signAttr
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	} else if env := lookupEnv("LOG_LEVEL"); env != "" {
		cfg.LogLevel = env
	}

	if err := cfg.Validate(); err != nil {
		return nil, &usageError{err: err}
	}
	return cfg, nil
}

// validate checks the flags on their own. Overrides of config values are
// checked only when given so the config file stays authoritative otherwise.
func (o *options) validate(fs *pflag.FlagSet) error {
	cv := validation.NewConfigValidator("")
	cv.Required("graph", o.graphPath).
		NonNegative("--components", o.components).
		NonNegative("--simulate_failures", o.simulateFailures).
		NonNegative("--robustness_check", o.robustnessCheck)

	cv.When(fs.Changed("robustness_trials"), func(v *validation.ConfigValidator) {
		v.Positive("--robustness_trials", o.robustnessTrials)
	})
	cv.When(fs.Changed("homophily_alpha"), func(v *validation.ConfigValidator) {
		v.OpenRangeFloat("--homophily_alpha", o.homophilyAlpha, 0, 1)
	})
	cv.When(fs.Changed("homophily_attr"), func(v *validation.ConfigValidator) {
		v.Required("--homophily_attr", o.homophilyAttr)
	})
	cv.When(fs.Changed("sign_attr"), func(v *validation.ConfigValidator) {
		v.Required("--sign_attr", o.signAttr)
	})

	cv.When(o.plot != "", func(v *validation.ConfigValidator) {
		v.Custom("--plot", func() error {
			mode, err := visualization.ParseMode(o.plot)
			o.mode = mode
			return err
		})
	})
	cv.Requires("--plot T", o.mode == visualization.ModeTemporal, "--temporal_simulation", o.temporalSimulation != "").
		Requires("--plot_out", o.plotOut != "", "--plot", o.plot != "").
		Requires("--temporal_gif", o.temporalGIF != "", "--temporal_simulation", o.temporalSimulation != "")

	cv.When(o.plotOut != "", func(v *validation.ConfigValidator) {
		v.Custom("--plot_out", func() error { return validation.ValidateImagePath(o.plotOut) })
	})
	cv.When(o.temporalGIF != "", func(v *validation.ConfigValidator) {
		v.Custom("--temporal_gif", func() error { return validation.ValidateGIFPath(o.temporalGIF) })
	})

	if o.plot != "" && o.plotOut == "" && o.mode != "" {
		o.plotOut = fmt.Sprintf("plot_%s.png", o.mode)
	}
	return cv.Validate()
}
