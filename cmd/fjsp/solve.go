package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/limaJavier/fjsp/pkg/model"
)

var validFormats = []string{"text", "json", "yaml"}

// solutionOutput adds the per-machine view and the runtime to the serialized solution
type solutionOutput struct {
	model.Solution `yaml:",inline"`
	RuntimeSeconds float64                 `json:"runtime_s" yaml:"runtime_s"`
	Gantt          []model.MachineTimeline `json:"gantt,omitempty" yaml:"gantt,omitempty"`
}

func newSolveCmd(options *globalOptions) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "solve <instance>",
		Short: "Solve one instance and print its schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if !slices.Contains(validFormats, format) {
				return fmt.Errorf("%v is not a valid format (valid: %v)", format, validFormats)
			}

			cfg, err := options.load(cmd)
			if err != nil {
				return err
			}
			scheduler, err := newScheduler(cfg)
			if err != nil {
				return err
			}
			instance, err := model.InstanceFromFile(args[0])
			if err != nil {
				return err
			}

			solution, err := scheduler.Schedule(cmd.Context(), instance)
			if err != nil {
				return err
			}

			if err := writeOutput(cmd, out, func(w io.Writer) error { return renderSolution(w, solution, format) }); err != nil {
				return err
			}
			if !solution.HasSchedule() {
				return &exitError{code: exitNoSchedule, reason: fmt.Sprintf("%v: no schedule (%v)", instance.Name, solution.Status)}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", fmt.Sprintf("output format, one of %v", validFormats))
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file; standard output when empty")
	return cmd
}

func renderSolution(w io.Writer, solution *model.Solution, format string) error {
	output := solutionOutput{Solution: *solution, RuntimeSeconds: solution.Runtime.Seconds(), Gantt: solution.Gantt()}
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(output); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return renderText(w, output)
	}
}

func renderText(w io.Writer, output solutionOutput) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "instance:  %v (%d jobs, %d machines)\n", output.Instance, output.Jobs, output.Machines)
	fmt.Fprintf(&builder, "status:    %v\n", output.Status)
	fmt.Fprintf(&builder, "makespan:  %v\n", optionalValue(output.Makespan))
	fmt.Fprintf(&builder, "gap:       %v\n", optionalValue(output.Gap))
	fmt.Fprintf(&builder, "model:     %d binary, %d continuous, %d constraints\n", output.Stats.Binary, output.Stats.Continuous, output.Stats.Constraints)
	fmt.Fprintf(&builder, "runtime:   %v\n", output.Runtime)

	for _, timeline := range output.Gantt {
		fmt.Fprintf(&builder, "machine %d:", timeline.Machine)
		for _, operation := range timeline.Operations {
			fmt.Fprintf(&builder, " o%d(j%d) [%v, %v)", operation.Operation, operation.Job, operation.Start, operation.End)
		}
		builder.WriteString("\n")
	}

	_, err := io.WriteString(w, builder.String())
	return err
}

func optionalValue(value *float64) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprint(*value)
}
