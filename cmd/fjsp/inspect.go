package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/limaJavier/fjsp/pkg/model"
)

func newInspectCmd(options *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <instance>",
		Short: "Print instance statistics and the size of its model without solving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			built, err := buildModel(cmd, options, args[0])
			if err != nil {
				return err
			}

			stats := built.Instance.Stats()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "instance:     %v\n", built.Instance.Name)
			fmt.Fprintf(w, "jobs:         %d\n", stats.Jobs)
			fmt.Fprintf(w, "machines:     %d\n", stats.Machines)
			fmt.Fprintf(w, "operations:   %d\n", stats.Operations)
			fmt.Fprintf(w, "flexibility:  %.4g\n", stats.Flexibility)
			fmt.Fprintf(w, "big-M:        %v (%v)\n", built.BigM, built.Policy)
			fmt.Fprintf(w, "binary:       %d\n", built.Stats.Binary)
			fmt.Fprintf(w, "continuous:   %d\n", built.Stats.Continuous)
			fmt.Fprintf(w, "constraints:  %d\n", built.Stats.Constraints)
			fmt.Fprintf(w, "pairs:        %d\n", built.Stats.Pairs)
			return nil
		},
	}
}

func newExportLPCmd(options *globalOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-lp <instance>",
		Short: "Write the model of an instance in CPLEX LP format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			built, err := buildModel(cmd, options, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, func(w io.Writer) error { return built.Problem.WriteLP(w) })
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file; standard output when empty")
	return cmd
}

func buildModel(cmd *cobra.Command, options *globalOptions, path string) (*model.Model, error) {
	cfg, err := options.load(cmd)
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Model.Policy()
	if err != nil {
		return nil, err
	}
	instance, err := model.InstanceFromFile(path)
	if err != nil {
		return nil, err
	}
	return model.BuildModel(instance, policy)
}
