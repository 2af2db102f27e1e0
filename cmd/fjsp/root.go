package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/limaJavier/fjsp/internal/config"
	"github.com/limaJavier/fjsp/internal/logger"
	"github.com/limaJavier/fjsp/pkg/milp"
	"github.com/limaJavier/fjsp/pkg/model"
)

// globalOptions are the persistent flags; when set they override the configuration file
type globalOptions struct {
	configPath string
	solver     string
	timeLimit  float64
	threads    int
	mipGap     float64
	bigM       string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	options := &globalOptions{}
	root := &cobra.Command{
		Use:           "fjsp",
		Short:         "Flexible job shop scheduling through mixed-integer programming",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&options.configPath, "config", "c", "", "configuration file (yaml or json)")
	flags.StringVar(&options.solver, "solver", "", fmt.Sprintf("MILP solver, one of %v", milp.ValidSolvers()))
	flags.Float64Var(&options.timeLimit, "time-limit", 0, "time limit per instance in seconds")
	flags.IntVar(&options.threads, "threads", 0, "solver threads (0 keeps the solver default)")
	flags.Float64Var(&options.mipGap, "mip-gap", 0, "target relative gap (0 keeps the solver default)")
	flags.StringVar(&options.bigM, "big-m", "", fmt.Sprintf("big-M policy, one of %v, %v, %v", model.SumPolicyName, model.SumMaxPolicyName, model.FixedPolicyName))
	flags.StringVar(&options.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newSolveCmd(options),
		newBatchCmd(options),
		newInspectCmd(options),
		newExportLPCmd(options),
	)
	return root
}

// load reads the configuration, applies the flags that were set and configures logging
func (options *globalOptions) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(options.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("solver") {
		cfg.Solver.Type = options.solver
	}
	if flags.Changed("time-limit") {
		cfg.Solver.TimeLimit = options.timeLimit
	}
	if flags.Changed("threads") {
		cfg.Solver.Threads = options.threads
	}
	if flags.Changed("mip-gap") {
		cfg.Solver.MIPGap = options.mipGap
	}
	if flags.Changed("big-m") {
		cfg.Model.BigM = options.bigM
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = options.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.Configure(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newScheduler(cfg *config.Config) (model.Scheduler, error) {
	solver, err := cfg.Solver.New()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Model.Policy()
	if err != nil {
		return nil, err
	}
	return model.NewMILPScheduler(solver, policy, cfg.Solver.Options(), cfg.Model.AssignmentThreshold, logger.New("scheduler")), nil
}

// writeOutput sends the rendering to path, or to the command output when path is empty
func writeOutput(cmd *cobra.Command, path string, render func(io.Writer) error) error {
	if path == "" {
		return render(cmd.OutOrStdout())
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
