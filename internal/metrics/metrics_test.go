package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromRecorder(t *testing.T) {
	t.Run("Solves by status", func(t *testing.T) {
		//** Arrange
		recorder, err := NewPromRecorder(prometheus.NewRegistry())
		require.NoError(t, err)

		//** Act
		recorder.ObserveSolve("optimal", 2*time.Second)
		recorder.ObserveSolve("optimal", time.Second)
		recorder.ObserveSolve("time-limit", time.Minute)

		//** Assert
		assert.Equal(t, 2.0, testutil.ToFloat64(recorder.solves.WithLabelValues("optimal")))
		assert.Equal(t, 1.0, testutil.ToFloat64(recorder.solves.WithLabelValues("time-limit")))
		assert.Equal(t, 2, testutil.CollectAndCount(recorder.duration))
	})

	t.Run("Model size and failures", func(t *testing.T) {
		//** Arrange
		registry := prometheus.NewRegistry()
		recorder, err := NewPromRecorder(registry)
		require.NoError(t, err)

		//** Act
		recorder.ObserveModel(120, 20, 300)
		recorder.IncFailure(FailureDecoding)

		//** Assert
		assert.Equal(t, 3, testutil.CollectAndCount(recorder.modelSize))
		expected := `
# HELP fjsp_failures_total Instances that produced no solution row by failure kind
# TYPE fjsp_failures_total counter
fjsp_failures_total{kind="decoding"} 1
`
		assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "fjsp_failures_total"))
	})

	t.Run("Collectors already registered are reused", func(t *testing.T) {
		//** Arrange
		registry := prometheus.NewRegistry()
		first, err := NewPromRecorder(registry)
		require.NoError(t, err)

		//** Act
		second, err := NewPromRecorder(registry)
		require.NoError(t, err)
		first.IncFailure(FailureSolver)
		second.IncFailure(FailureSolver)

		//** Assert
		assert.Equal(t, 2.0, testutil.ToFloat64(first.failures.WithLabelValues(FailureSolver)))
	})
}

func TestWriteTextfile(t *testing.T) {
	//** Arrange
	registry := prometheus.NewRegistry()
	recorder, err := NewPromRecorder(registry)
	require.NoError(t, err)
	recorder.ObserveSolve("optimal", time.Second)
	path := filepath.Join(t.TempDir(), "fjsp.prom")

	//** Act
	err = WriteTextfile(path, registry)

	//** Assert
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `fjsp_solves_total{status="optimal"} 1`)
}
