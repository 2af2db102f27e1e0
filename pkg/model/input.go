package model

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type MachineOption struct {
	Machine int     `json:"machine" yaml:"machine"`
	Time    float64 `json:"time" yaml:"time"`
}

type Operation struct {
	Id       int             // Position in the flattened (job, position) order
	Job      int             // Index of the owning job
	Position int             // Position inside the job
	Options  []MachineOption // Eligible machines sorted by machine id
}

type Job struct {
	Id         int
	Operations []Operation
}

// Instance is an immutable Flexible Job Shop instance. Operations are identified by their flattened index,
// which follows job order and, inside a job, precedence order
type Instance struct {
	Name         string
	MachineCount int // Machine count declared by the instance header
	Jobs         []Job

	operations []Operation
	machines   []int
}

type InstanceStats struct {
	Jobs        int     `json:"jobs"`
	Machines    int     `json:"machines"`
	Operations  int     `json:"operations"`
	Options     int     `json:"options"`
	Flexibility float64 `json:"flexibility"` // Average eligible machines per operation
}

// NewInstance builds and validates an instance from per-job, per-operation option lists.
// Options are sorted by machine id; a machine listed twice for the same operation keeps its shortest time
func NewInstance(name string, machineCount int, jobs [][][]MachineOption) (*Instance, error) {
	instance := &Instance{
		Name:         name,
		MachineCount: machineCount,
		Jobs:         make([]Job, 0, len(jobs)),
	}

	for jobId, rawOperations := range jobs {
		job := Job{Id: jobId, Operations: make([]Operation, 0, len(rawOperations))}
		for position, rawOptions := range rawOperations {
			operation := Operation{
				Id:       len(instance.operations),
				Job:      jobId,
				Position: position,
				Options:  normalizeOptions(rawOptions),
			}
			job.Operations = append(job.Operations, operation)
			instance.operations = append(instance.operations, operation)
		}
		instance.Jobs = append(instance.Jobs, job)
	}

	instance.machines = lo.Uniq(lo.FlatMap(instance.operations, func(operation Operation, _ int) []int {
		return lo.Map(operation.Options, func(option MachineOption, _ int) int { return option.Machine })
	}))
	slices.Sort(instance.machines)

	if err := instance.Validate(); err != nil {
		return nil, err
	}
	return instance, nil
}

func normalizeOptions(options []MachineOption) []MachineOption {
	best := make(map[int]float64, len(options))
	for _, option := range options {
		if time, ok := best[option.Machine]; !ok || option.Time < time {
			best[option.Machine] = option.Time
		}
	}
	normalized := lo.MapToSlice(best, func(machine int, time float64) MachineOption {
		return MachineOption{Machine: machine, Time: time}
	})
	slices.SortFunc(normalized, func(a, b MachineOption) int { return a.Machine - b.Machine })
	return normalized
}

// Validate checks the data-model invariants: at least one job, every job with at least one operation,
// every operation with at least one eligible machine, positive finite processing times and machine ids
// within the header range (ids may be 0-based or 1-based, but not both)
func (instance *Instance) Validate() error {
	invalid := func(job, operation int, format string, args ...any) error {
		return &InstanceValidationError{
			Instance:  instance.Name,
			Job:       job,
			Operation: operation,
			Reason:    fmt.Sprintf(format, args...),
		}
	}

	if instance.MachineCount < 1 {
		return invalid(-1, -1, "machine count must be positive (got %d)", instance.MachineCount)
	}
	if len(instance.Jobs) == 0 {
		return invalid(-1, -1, "instance has no jobs")
	}

	for _, job := range instance.Jobs {
		if len(job.Operations) == 0 {
			return invalid(job.Id, -1, "job has no operations")
		}
		for _, operation := range job.Operations {
			if len(operation.Options) == 0 {
				return invalid(job.Id, operation.Position, "operation has no eligible machines")
			}
			for _, option := range operation.Options {
				if option.Machine < 0 || option.Machine > instance.MachineCount {
					return invalid(job.Id, operation.Position, "machine %d is out of range [0, %d]", option.Machine, instance.MachineCount)
				}
				if option.Time <= 0 || math.IsInf(option.Time, 0) || math.IsNaN(option.Time) {
					return invalid(job.Id, operation.Position, "processing time on machine %d must be positive (got %v)", option.Machine, option.Time)
				}
			}
		}
	}

	if len(instance.machines) > 0 && instance.machines[0] == 0 && lo.Contains(instance.machines, instance.MachineCount) {
		return invalid(-1, -1, "machine ids mix 0-based and 1-based numbering (both 0 and %d are used)", instance.MachineCount)
	}
	return nil
}

// Operations returns every operation in flattened order
func (instance *Instance) Operations() []Operation {
	return instance.operations
}

func (instance *Instance) Operation(id int) Operation {
	return instance.operations[id]
}

// Machines returns the sorted union of machine ids referenced by any operation
func (instance *Instance) Machines() []int {
	return instance.machines
}

// Predecessor returns the previous operation of the same job, if any
func (instance *Instance) Predecessor(id int) (Operation, bool) {
	operation := instance.operations[id]
	if operation.Position == 0 {
		return Operation{}, false
	}
	return instance.operations[id-1], true
}

// Last reports whether the operation has no successor in its job
func (instance *Instance) Last(id int) bool {
	operation := instance.operations[id]
	return operation.Position == len(instance.Jobs[operation.Job].Operations)-1
}

// OperationsOn returns the ids of the operations eligible on machine, in increasing order
func (instance *Instance) OperationsOn(machine int) []int {
	return lo.FilterMap(instance.operations, func(operation Operation, _ int) (int, bool) {
		return operation.Id, operation.Eligible(machine)
	})
}

// TotalProcessingTime sums every option of every operation
func (instance *Instance) TotalProcessingTime() float64 {
	return lo.SumBy(instance.operations, func(operation Operation) float64 {
		return lo.SumBy(operation.Options, func(option MachineOption) float64 { return option.Time })
	})
}

// SumOfMaxProcessingTimes sums the longest option of every operation. Running every operation
// one after another on its slowest machine is feasible, so no optimal start time exceeds this horizon
func (instance *Instance) SumOfMaxProcessingTimes() float64 {
	return lo.SumBy(instance.operations, func(operation Operation) float64 { return operation.MaxTime() })
}

// Integral reports whether every processing time is a whole number
func (instance *Instance) Integral() bool {
	return lo.EveryBy(instance.operations, func(operation Operation) bool {
		return lo.EveryBy(operation.Options, func(option MachineOption) bool { return option.Time == math.Trunc(option.Time) })
	})
}

func (instance *Instance) Stats() InstanceStats {
	options := lo.SumBy(instance.operations, func(operation Operation) int { return len(operation.Options) })
	return InstanceStats{
		Jobs:        len(instance.Jobs),
		Machines:    instance.MachineCount,
		Operations:  len(instance.operations),
		Options:     options,
		Flexibility: float64(options) / float64(len(instance.operations)),
	}
}

func (operation Operation) Eligible(machine int) bool {
	_, ok := operation.ProcessingTime(machine)
	return ok
}

func (operation Operation) ProcessingTime(machine int) (float64, bool) {
	option, ok := lo.Find(operation.Options, func(option MachineOption) bool { return option.Machine == machine })
	return option.Time, ok
}

func (operation Operation) MaxTime() float64 {
	return lo.MaxBy(operation.Options, func(a, b MachineOption) bool { return a.Time > b.Time }).Time
}

// InstanceFromFile reads a Fattahi-style instance file; the instance is named after the file
func InstanceFromFile(file string) (*Instance, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read instance file: %w", err)
	}
	return ParseInstance(bytes.NewReader(content), filepath.Base(file))
}

// ParseInstance reads the count-prefixed instance format:
//
//	<num_jobs> <num_machines>
//	<num_ops> { <num_alternatives> { <machine> <time> }* }*   (one job per line)
//
// The header is the first non-empty line and tokens after the two counts are ignored (some benchmark
// families append the average flexibility). The job section is read as a plain token stream
func ParseInstance(reader io.Reader, name string) (*Instance, error) {
	header, body, err := splitHeader(reader)
	if err != nil {
		return nil, &MalformedInstanceError{Instance: name, Job: -1, Operation: -1, Reason: err.Error()}
	}

	parser := instanceParser{name: name, tokens: body, job: -1, operation: -1}

	if len(header) < 2 {
		return nil, parser.malformed("header must declare job and machine counts (got %d tokens)", len(header))
	}
	jobCount, err := strconv.Atoi(header[0])
	if err != nil || jobCount < 1 {
		return nil, parser.malformed("job count must be a positive integer (got %q)", header[0])
	}
	machineCount, err := strconv.Atoi(header[1])
	if err != nil || machineCount < 1 {
		return nil, parser.malformed("machine count must be a positive integer (got %q)", header[1])
	}

	jobs := make([][][]MachineOption, 0, parser.capacity(jobCount, 1))
	for job := range jobCount {
		parser.job, parser.operation = job, -1

		operationCount, err := parser.count("operation count")
		if err != nil {
			return nil, err
		}

		operations := make([][]MachineOption, 0, parser.capacity(operationCount, 1))
		for operation := range operationCount {
			parser.operation = operation

			alternatives, err := parser.count("alternative count")
			if err != nil {
				return nil, err
			}

			options := make([]MachineOption, 0, parser.capacity(alternatives, 2))
			for range alternatives {
				machine, err := parser.machine()
				if err != nil {
					return nil, err
				}
				time, err := parser.time()
				if err != nil {
					return nil, err
				}
				options = append(options, MachineOption{Machine: machine, Time: time})
			}
			operations = append(operations, options)
		}
		jobs = append(jobs, operations)
	}

	if parser.cursor < len(parser.tokens) {
		parser.job, parser.operation = -1, -1
		return nil, parser.malformed("unexpected trailing token %q after %d jobs", parser.tokens[parser.cursor], jobCount)
	}

	return NewInstance(name, machineCount, jobs)
}

func splitHeader(reader io.Reader) (header []string, body []string, err error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if header == nil {
			if len(fields) > 0 {
				header = fields
			}
			continue
		}
		body = append(body, fields...)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("cannot read instance: %w", err)
	}
	if header == nil {
		return nil, nil, fmt.Errorf("instance is empty")
	}
	return header, body, nil
}

// instanceParser walks the job section token by token keeping track of the job and operation being read
type instanceParser struct {
	name      string
	tokens    []string
	cursor    int
	job       int
	operation int
}

func (parser *instanceParser) malformed(format string, args ...any) error {
	return &MalformedInstanceError{
		Instance:  parser.name,
		Job:       parser.job,
		Operation: parser.operation,
		Reason:    fmt.Sprintf(format, args...),
	}
}

func (parser *instanceParser) next(expected string) (string, error) {
	if parser.cursor >= len(parser.tokens) {
		return "", parser.malformed("unexpected end of file, expected %v", expected)
	}
	token := parser.tokens[parser.cursor]
	parser.cursor++
	return token, nil
}

func (parser *instanceParser) count(expected string) (int, error) {
	token, err := parser.next(expected)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(token)
	if err != nil || value < 0 {
		return 0, parser.malformed("%v must be a non-negative integer (got %q)", expected, token)
	}
	return value, nil
}

// capacity bounds a declared count by what the remaining tokens can hold, so a corrupt count fails at the end of
// file instead of allocating
func (parser *instanceParser) capacity(count, tokensPerItem int) int {
	return min(count, (len(parser.tokens)-parser.cursor)/tokensPerItem)
}

func (parser *instanceParser) machine() (int, error) {
	token, err := parser.next("machine id")
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(token)
	if err != nil {
		return 0, parser.malformed("machine id must be an integer (got %q)", token)
	}
	return value, nil
}

func (parser *instanceParser) time() (float64, error) {
	token, err := parser.next("processing time")
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, parser.malformed("processing time must be a number (got %q)", token)
	}
	if value < 0 {
		return 0, parser.malformed("processing time must not be negative (got %v)", token)
	}
	return value, nil
}
