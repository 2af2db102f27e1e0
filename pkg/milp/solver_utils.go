package milp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Grace period granted to an executable beyond its own time limit before it is killed
const killGrace = 30 * time.Second

// executableOptions are shared by the backends that drive an external binary
type executableOptions struct {
	Path      string   `json:"path"`       // Executable path, defaults to the binary name looked up on PATH
	ExtraArgs []string `json:"extra_args"` // Appended verbatim to the command line
	KeepFiles bool     `json:"keep_files"` // Keep the model and solution files for inspection
}

// workspace holds the temporary files of one solver invocation
type workspace struct {
	dir  string
	keep bool
}

func newWorkspace(solver string, keep bool) (*workspace, error) {
	dir, err := os.MkdirTemp("", solver+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary directory: %v", err)
	}
	return &workspace{dir: dir, keep: keep}, nil
}

func (space *workspace) path(name string) string {
	return filepath.Join(space.dir, name)
}

// writeModel stores the problem in CPLEX LP format and returns the file path
func (space *workspace) writeModel(problem *Problem) (string, error) {
	modelPath := space.path("model.lp")
	file, err := os.Create(modelPath)
	if err != nil {
		return "", fmt.Errorf("failed to create model file: %v", err)
	}
	defer file.Close()

	if err := problem.WriteLP(file); err != nil {
		return "", fmt.Errorf("failed to write model file: %v", err)
	}
	return modelPath, nil
}

func (space *workspace) Close() error {
	if space.keep {
		return nil
	}
	return os.RemoveAll(space.dir)
}

// runExecutable runs the solver binary and returns its standard output. A non-zero exit code is an
// execution failure; solvers report infeasibility through their output, not their exit code
func runExecutable(ctx context.Context, solver, path string, timeLimit time.Duration, args []string) (string, error) {
	if timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeLimit+killGrace)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, path, args...)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdOut.String(), fmt.Errorf("%w: %v: %v: %v", ErrSolverExecution, solver, err, stderr.String())
	}
	return stdOut.String(), nil
}

func executablePath(options executableOptions, fallback string) string {
	if options.Path != "" {
		return options.Path
	}
	return fallback
}
