package store

import (
	"context"
	"encoding/json"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func monthly(n int) []time.Time {
	times := make([]time.Time, n)
	for i := range times {
		times[i] = time.Date(1997, time.January+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
	}
	return times
}

func TestRecordRun(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	params := map[string]any{"mother": "morlet", "dj": 0.25}
	first, err := s.RecordRun(ctx, "wavelet", params)
	require.NoError(t, err)
	second, err := s.RecordRun(ctx, "filter", map[string]any{"cutoff": 0.05})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	all, err := s.Runs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	wavelets, err := s.Runs(ctx, "wavelet")
	require.NoError(t, err)
	require.Len(t, wavelets, 1)
	assert.Equal(t, first, wavelets[0].ID)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(wavelets[0].Params, &decoded))
	assert.Equal(t, "morlet", decoded["mother"])
	assert.WithinDuration(t, time.Now(), wavelets[0].Created, time.Minute)

	_, err = s.RecordRun(ctx, "bad", func() {})
	assert.Error(t, err)
}

func TestSeriesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	run, err := s.RecordRun(ctx, "ecindex", nil)
	require.NoError(t, err)

	times := monthly(4)
	require.NoError(t, s.SaveSeries(ctx, run, "E", times, []float64{0.5, math.NaN(), -1, 2}))
	require.NoError(t, s.SaveSeries(ctx, run, "C", times, []float64{1, 2, 3, 4}))

	got, err := s.LoadSeries(ctx, run, "E")
	require.NoError(t, err)
	assert.Equal(t, "E", got.Name)
	require.Len(t, got.Values, 4)
	for i := range times {
		assert.True(t, times[i].Equal(got.Time[i]), "time %d", i)
	}
	assert.Equal(t, 0.5, got.Values[0])
	assert.True(t, math.IsNaN(got.Values[1]))
	assert.Equal(t, 2.0, got.Values[3])

	// saving again replaces the series
	require.NoError(t, s.SaveSeries(ctx, run, "C", times[:2], []float64{9, 8}))
	c, err := s.LoadSeries(ctx, run, "C")
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 8}, []float64(c.Values))

	names, err := s.SeriesNames(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "E"}, names)
}

func TestSeriesErrors(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	run, err := s.RecordRun(ctx, "filter", nil)
	require.NoError(t, err)

	assert.Error(t, s.SaveSeries(ctx, run, "x", monthly(2), []float64{1}))
	assert.ErrorIs(t, s.SaveSeries(ctx, uuid.New(), "x", monthly(1), []float64{1}), ErrNotFound)

	_, err = s.LoadSeries(ctx, run, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReopenKeepsCatalog(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	run, err := s.RecordRun(ctx, "bm95", map[string]int{"modes": 5})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.Runs(ctx, "bm95")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run, runs[0].ID)
}

func TestMigrator(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	m, err := NewMigrator(s.db)
	require.NoError(t, err)
	require.Len(t, m.migrations, 3)
	assert.Equal(t, "create runs", m.migrations[0].Name)
	for _, migration := range m.migrations {
		assert.NotEmpty(t, migration.Up, "migration %d", migration.Version)
		assert.NotEmpty(t, migration.Down, "migration %d", migration.Version)
	}

	version, err := m.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, m.Latest(), version)

	require.NoError(t, m.MigrateTo(ctx, 1))
	version, err = m.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	_, err = s.db.ExecContext(ctx, "SELECT 1 FROM series")
	assert.Error(t, err, "series table should be dropped")

	require.NoError(t, m.MigrateUp(ctx))
	version, err = m.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}
