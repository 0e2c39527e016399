package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flujo-dev/flujo/internal/runlog"
)

func TestClassify_Statement(t *testing.T) {
	dir := initProject(t)

	out, err := runFlujo(t, "classify", fixture(t, "cartola_junio_2025.csv"), "--repo", dir, "--opening", "1000000")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Classified 6 of 7 rows (85.71%) up to 2025-06-20")
	assert.Contains(t, out, "Unreadable values: 1")
	assert.Contains(t, out, "Wrote exports/cartola_junio_2025_clasificado.csv")
	assert.Contains(t, out, "Wrote exports/cartola_junio_2025_clasificado_no_clasificados.csv")

	data, err := os.ReadFile(filepath.Join(dir, "exports", "cartola_junio_2025_clasificado_no_clasificados.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Cargo varios")

	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "classify", entries[0].Command)
	assert.Empty(t, entries[0].Projection)
}

func TestClassify_Cutoff(t *testing.T) {
	dir := initProject(t)
	out, err := runFlujo(t, "classify", fixture(t, "cartola_junio_2025.csv"), "--repo", dir, "--cutoff", "05/06/2025")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Classified 3 of 3 rows (100.00%) up to 2025-06-05")
}

func TestClassify_All(t *testing.T) {
	dir := initProject(t)
	copyInto(t, fixture(t, "cartola_junio_2025.csv"), filepath.Join(dir, "import"))
	copyInto(t, fixture(t, "cartola_preambulo.csv"), filepath.Join(dir, "import"))

	out, err := runFlujo(t, "import", "scan", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "cartola_junio_2025.csv")
	assert.Contains(t, out, "cartola_preambulo.csv")

	out, err = runFlujo(t, "classify", "--all", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "== cartola_junio_2025.csv")
	assert.Contains(t, out, "== cartola_preambulo.csv")

	for _, name := range []string{"cartola_junio_2025.csv", "cartola_preambulo.csv"} {
		_, err := os.Stat(filepath.Join(dir, "import", "processed", name))
		assert.NoError(t, err, "%s should be moved to processed/", name)
	}

	out, err = runFlujo(t, "import", "scan", "--repo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No statements in import/")
}

func TestClassify_RequiresStatement(t *testing.T) {
	out, err := runFlujo(t, "classify", "--repo", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "missing statement file")
}

func TestClassify_LogLevelFlag(t *testing.T) {
	dir := initProject(t)
	out, err := runFlujo(t, "classify", fixture(t, "cartola_junio_2025.csv"), "--repo", dir, "--log-level", "debug")
	require.NoError(t, err, out)
	assert.Contains(t, out, "rule table loaded")

	_, err = runFlujo(t, "classify", fixture(t, "cartola_junio_2025.csv"), "--repo", dir, "--log-level", "loud")
	require.Error(t, err)
}
