package report

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limaJavier/fjsp/internal/batch"
)

func pointer(value float64) *float64 {
	return &value
}

func sampleRows() []batch.Row {
	return []batch.Row{
		{
			RunID: "run-1", Instance: "MFJS1.txt", Jobs: 5, Machines: 6, Operations: 15,
			Binary: 120, Continuous: 16, Constraints: 250,
			Makespan: pointer(468), Gap: pointer(0), Time: 1500 * time.Millisecond, Status: "optimal",
		},
		{
			RunID: "run-1", Instance: "SFJS2.txt", Jobs: 2, Machines: 2, Operations: 4,
			Binary: 10, Continuous: 5, Constraints: 20,
			Makespan: pointer(107), Gap: pointer(0.125), Time: 3 * time.Second, Status: "time-limit",
		},
		{
			RunID: "run-1", Instance: "broken.txt", Status: batch.StatusError,
			Error: `malformed instance "broken.txt": unexpected end of file, expected job count`,
		},
		{
			RunID: "run-1", Instance: "hard.txt", Jobs: 10, Machines: 8, Operations: 40,
			Binary: 900, Continuous: 41, Constraints: 1800,
			Time: time.Minute, Status: "time-limit-no-incumbent",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	//** Arrange
	var buffer bytes.Buffer

	//** Act
	err := WriteCSV(&buffer, sampleRows())

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"instance,jobs,machines,ops,binary_vars,continuous_vars,constraints,makespan,gap,time_s,status,error",
		"MFJS1.txt,5,6,15,120,16,250,468,0,1.5,optimal,",
		"SFJS2.txt,2,2,4,10,5,20,107,0.125,3,time-limit,",
		`broken.txt,,,,,,,,,,error,"malformed instance ""broken.txt"": unexpected end of file, expected job count"`,
		"hard.txt,10,8,40,900,41,1800,,,60,time-limit-no-incumbent,",
	}, "\n")+"\n", buffer.String())
}

func TestWriteMarkdown(t *testing.T) {
	//** Arrange
	var buffer bytes.Buffer

	//** Act
	err := WriteMarkdown(&buffer, sampleRows())

	//** Assert
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "| MFJS1.txt | 5 | 6 | 15 | 136 | 250 | 468 | 0 | 1.5 | optimal |", lines[2])
	assert.Equal(t, "| SFJS2.txt | 2 | 2 | 4 | 15 | 20 | 107 | 0.125 | 3 | time-limit |", lines[3])
	assert.Equal(t, `| broken.txt | - | - | - | - | - | ERROR: malformed instance "broken.txt": unexpected end of file, expected job count | - | - | error |`, lines[4])
	assert.Equal(t, "| hard.txt | 10 | 8 | 40 | 941 | 1800 | - | - | 60 | time-limit-no-incumbent |", lines[5])
}

func TestWriteHTML(t *testing.T) {
	//** Arrange
	var buffer bytes.Buffer

	//** Act
	err := WriteHTML(&buffer, sampleRows())

	//** Assert
	require.NoError(t, err)
	html := buffer.String()
	assert.Contains(t, html, "Solve time per instance")
	assert.Contains(t, html, "Averages per instance family")
	assert.Contains(t, html, "MFJS1.txt")
	assert.Contains(t, html, "SFJS2.txt")
	assert.NotContains(t, html, "hard.txt")
	assert.NotContains(t, html, "broken.txt")
}

func TestFamily(t *testing.T) {
	assert.Equal(t, "mfjs", Family("MFJS10.txt"))
	assert.Equal(t, "sfjs", Family("sfjs01.fjs"))
	assert.Equal(t, "other", Family("mk01.fjs"))
}

func TestSQLiteStore(t *testing.T) {
	//** Arrange
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	rows := sampleRows()
	other := batch.Row{RunID: "run-2", Instance: "MFJS1.txt", Status: "optimal", Makespan: pointer(470), Gap: pointer(0)}

	//** Act
	require.NoError(t, store.Save(context.Background(), rows))
	require.NoError(t, store.Save(context.Background(), []batch.Row{other}))
	stored, err := store.Rows(context.Background(), "run-1")

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, rows, stored)

	stored, err = store.Rows(context.Background(), "run-2")
	require.NoError(t, err)
	assert.Equal(t, []batch.Row{other}, stored)
}
