package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/oceanlab/internal/dataset"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), "oceanlab %s", strings.Join(args, " "))
	return out.String()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out")
	db := filepath.Join(dir, "catalog.db")

	s := &dataset.Series{Name: "sla"}
	for i := 0; i < 256; i++ {
		s.Time = append(s.Time, time.Date(2015, time.January, 1+i, 0, 0, 0, 0, time.UTC))
		s.Values = append(s.Values, math.Sin(2*math.Pi*float64(i)/40)+0.3*math.Sin(2*math.Pi*float64(i)/5))
	}
	input := filepath.Join(dir, "sla.csv")
	require.NoError(t, dataset.WriteSeries(input, s))

	out := execute(t, "filter", input, "--cutoff", "0.1", "--store", db, "--output", output)
	assert.Contains(t, out, "sla_lowpass")
	_, err := os.Stat(filepath.Join(output, "filter", "sla_lowpass.json"))
	assert.NoError(t, err)

	out = execute(t, "wavelet", input, "--store", db, "--output", output, "--format", "xlsx")
	assert.Contains(t, out, "peak period")
	_, err = os.Stat(filepath.Join(output, "wavelet", "sla.xlsx"))
	assert.NoError(t, err)

	out = execute(t, "runs", "--store", db)
	assert.Contains(t, out, "filter")
	assert.Contains(t, out, "wavelet")

	out = execute(t, "dispersion", "--modes", "2", "--output", output, "--format", "json")
	assert.Contains(t, out, filepath.Join(output, "dispersion", "rossby.json"))
}

func TestFailedCommandClosesCatalog(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "catalog.db")

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"wavelet", filepath.Join(dir, "missing.csv"), "--store", db, "--output", filepath.Join(dir, "out")})
	require.Error(t, rootCmd.Execute())
	assert.Nil(t, catalog, "catalog left open after a failed run")

	// a closed catalog releases the file for the next run
	out := execute(t, "runs", "--store", db)
	assert.Contains(t, out, "KIND")
}
