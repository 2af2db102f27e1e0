package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/limaJavier/fjsp/pkg/milp"
	"github.com/limaJavier/fjsp/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("YAML file", func(t *testing.T) {
		//** Arrange
		path := writeConfig(t, "config.yaml", `solver:
  type: highs
  time_limit: 60
  threads: 4
  mip_gap: 0.01
  conf:
    path: /opt/highs/bin/highs
model:
  big_m: fixed
  big_m_value: 500
batch:
  extensions: [".fjs"]
  max_instances: 3
  workers: 2
report:
  csv: results.csv
  sqlite: results.db
metrics:
  textfile: fjsp.prom
log:
  level: debug
  file: logs/fjsp.log
  max_size_mb: 10
`)

		//** Act
		cfg, err := Load(path)

		//** Assert
		require.NoError(t, err)
		checks := []struct {
			name string
			got  any
			want any
		}{
			{"solver.type", cfg.Solver.Type, milp.Highs},
			{"solver.time_limit", cfg.Solver.TimeLimit, 60.0},
			{"solver.threads", cfg.Solver.Threads, 4},
			{"solver.mip_gap", cfg.Solver.MIPGap, 0.01},
			{"solver.conf.path", cfg.Solver.Conf["path"], "/opt/highs/bin/highs"},
			{"model.big_m", cfg.Model.BigM, model.FixedPolicyName},
			{"model.big_m_value", cfg.Model.BigMValue, 500.0},
			{"model.assignment_threshold", cfg.Model.AssignmentThreshold, model.DefaultAssignmentThreshold},
			{"batch.max_instances", cfg.Batch.MaxInstances, 3},
			{"batch.workers", cfg.Batch.Workers, 2},
			{"batch.prefer", cfg.Batch.Prefer, "fattahi"},
			{"report.csv", cfg.Report.CSV, "results.csv"},
			{"report.sqlite", cfg.Report.SQLite, "results.db"},
			{"metrics.textfile", cfg.Metrics.Textfile, "fjsp.prom"},
			{"log.level", cfg.Log.Level, "debug"},
			{"log.file", cfg.Log.File, "logs/fjsp.log"},
			{"log.max_size_mb", cfg.Log.MaxSizeMB, 10},
		}
		for _, c := range checks {
			assert.Equal(t, c.want, c.got, c.name)
		}
		assert.Equal(t, []string{".fjs"}, cfg.Batch.Extensions)
		assert.Equal(t, milp.Options{TimeLimit: time.Minute, Threads: 4, MIPGap: 0.01}, cfg.Solver.Options())
	})

	t.Run("JSON file", func(t *testing.T) {
		path := writeConfig(t, "config.json", `{"solver": {"type": "cbc", "threads": 2}, "model": {"big_m": "sum-max"}}`)

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, milp.Cbc, cfg.Solver.Type)
		assert.Equal(t, 2, cfg.Solver.Threads)
		policy, err := cfg.Model.Policy()
		require.NoError(t, err)
		assert.Equal(t, model.SumMaxPolicy{}, policy)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		//** Arrange
		path := writeConfig(t, "config.yaml", "solver:\n  time_limit: 60\n")
		t.Setenv("FJSP_SOLVER__TIME_LIMIT", "30")
		t.Setenv("FJSP_BATCH__WORKERS", "8")

		//** Act
		cfg, err := Load(path)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, 30.0, cfg.Solver.TimeLimit)
		assert.Equal(t, 8, cfg.Batch.Workers)
	})

	t.Run("Defaults without file", func(t *testing.T) {
		//** Act
		cfg, err := Load("")

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.Equal(t, milp.BranchBound, cfg.Solver.Type)
		assert.Equal(t, float64(DefaultTimeLimit), cfg.Solver.TimeLimit)
		assert.Equal(t, model.SumPolicyName, cfg.Model.BigM)
		assert.Equal(t, []string{".fjs", ".fjsp", ".txt", ".dat"}, cfg.Batch.Extensions)
		assert.Equal(t, 1, cfg.Batch.Workers)
	})

	t.Run("Unsupported format", func(t *testing.T) {
		_, err := Load(writeConfig(t, "config.toml", "solver = 1"))

		assert.ErrorContains(t, err, "unsupported config format")
	})

	invalid := map[string]string{
		"Unknown solver":          "solver:\n  type: gurobi\n",
		"Negative time limit":     "solver:\n  time_limit: -1\n",
		"Gap out of range":        "solver:\n  mip_gap: 1.5\n",
		"Fixed big-M needs value": "model:\n  big_m: fixed\n",
		"Unknown big-M policy":    "model:\n  big_m: huge\n",
		"Threshold out of range":  "model:\n  assignment_threshold: 2\n",
		"Negative workers":        "batch:\n  workers: -2\n",
	}
	for name, data := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yml", data))

			assert.Error(t, err)
		})
	}
}
