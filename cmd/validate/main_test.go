package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/radar-rain-labeler/internal/adapter/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func TestValidate(t *testing.T) {
	files := []string{"a.h5", "b.h5", "c.h5"}

	t.Run("valid report", func(t *testing.T) {
		rows := []report.Row{
			{Filename: "a.h5", Rainy: boolPtr(true)},
			{Filename: "b.h5", Rainy: boolPtr(false)},
			{Filename: "c.h5"},
		}
		for _, p := range validate(files, rows) {
			assert.True(t, p.passed(), "%s: %v", p.name, p.errors)
		}
	})

	t.Run("missing, extra, duplicate and unsorted rows", func(t *testing.T) {
		rows := []report.Row{
			{Filename: "b.h5"},
			{Filename: "a.h5"},
			{Filename: "a.h5"},
			{Filename: "z.h5"},
		}
		phases := validate(files, rows)
		require.Len(t, phases, 3)

		assert.Equal(t, []string{
			"c.h5: missing from report",
			"z.h5: in report but not in data dir",
		}, phases[0].errors)
		assert.Equal(t, []string{"a.h5: rows 3 and 4"}, phases[1].errors)
		assert.Equal(t, []string{"row 3: a.h5 sorts before b.h5"}, phases[2].errors)
	})
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.h5", "b.h5"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	good := filepath.Join(t.TempDir(), "good.csv")
	require.NoError(t, os.WriteFile(good, []byte("filename,rainy\na.h5,True\nb.h5,\n"), 0o644))
	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("filename,rainy\nb.h5,False\n"), 0o644))

	assert.Equal(t, 0, run(dir, good, ".h5"))
	assert.Equal(t, 1, run(dir, bad, ".h5"))
	assert.Equal(t, 1, run(dir, filepath.Join(dir, "absent.csv"), ".h5"))
}

func TestCountLabels(t *testing.T) {
	rainy, dry, unknown := countLabels([]report.Row{
		{Rainy: boolPtr(true)}, {Rainy: boolPtr(false)}, {Rainy: boolPtr(false)}, {},
	})
	assert.Equal(t, 1, rainy)
	assert.Equal(t, 2, dry)
	assert.Equal(t, 1, unknown)
}
