package summary_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stride-ml/stride/internal/summary"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter_AddScalar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")

	w, err := summary.NewWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.AddScalar("loss/train", 1, 2.5))
	require.NoError(t, w.AddScalar("loss/train", 2, 1.25))
	require.NoError(t, w.Close())

	rows := readRows(t, path)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"wall_time", "step", "tag", "value"}, rows[0])

	assert.Equal(t, "1", rows[1][1])
	assert.Equal(t, "loss/train", rows[1][2])
	assert.Equal(t, "2.5", rows[1][3])

	assert.Equal(t, "2", rows[2][1])
	assert.Equal(t, "1.25", rows[2][3])

	// wall_time parses as a float timestamp
	_, err = strconv.ParseFloat(rows[1][0], 64)
	assert.NoError(t, err)
}

func TestWriter_AddScalars_SortedTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")

	w, err := summary.NewWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.AddScalars(map[string]float64{
		"loss/val":   0.2,
		"loss/train": 0.1,
	}, 7))
	require.NoError(t, w.Close())

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "loss/train", rows[1][2])
	assert.Equal(t, "loss/val", rows[2][2])
	assert.Equal(t, "7", rows[1][1])
	assert.Equal(t, "7", rows[2][1])
}

func TestWriter_ClosedRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")

	w, err := summary.NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Error(t, w.AddScalar("loss/train", 1, 1.0))
	// Closing twice is fine
	assert.NoError(t, w.Close())
}
