package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/radar-rain-labeler/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wantCSV = `filename,rainy
RAD_NL25_RAC_RT_202401011000.h5,True
RAD_NL25_RAC_RT_202401011005.h5,False
RAD_NL25_RAC_RT_202401011010.h5,
`

func sampleReport(runID string) domain.Report {
	return domain.Report{
		RunID: runID,
		Labels: []domain.Label{
			domain.NewLabel("RAD_NL25_RAC_RT_202401011000.h5", domain.Classification{Rainy: true}),
			domain.NewLabel("RAD_NL25_RAC_RT_202401011005.h5", domain.Classification{}),
			domain.UnknownLabel("RAD_NL25_RAC_RT_202401011010.h5", errors.New("bad file")),
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport("run-1")))
	assert.Equal(t, wantCSV, buf.String())
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, domain.Report{}))
	assert.Equal(t, "filename,rainy\n", buf.String())
}

func TestCSVSink_WriteReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rainy_labels.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	sink := NewCSVSink(path)
	assert.Equal(t, "csv", sink.Name())
	require.NoError(t, sink.WriteReport(context.Background(), sampleReport("run-1")))

	first, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, wantCSV, string(first))

	// Reruns differ only in run metadata, which the CSV does not carry.
	require.NoError(t, sink.WriteReport(context.Background(), sampleReport("run-2")))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestCSVSink_WriteReport_MissingDir(t *testing.T) {
	sink := NewCSVSink(filepath.Join(t.TempDir(), "absent", "labels.csv"))
	require.Error(t, sink.WriteReport(context.Background(), sampleReport("run-1")))
}

func TestCSVSink_WriteReport_Cancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, NewCSVSink(path).WriteReport(ctx, sampleReport("run-1")), context.Canceled)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRead(t *testing.T) {
	rows, err := Read(strings.NewReader(wantCSV))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.NotNil(t, rows[0].Rainy)
	assert.True(t, *rows[0].Rainy)
	require.NotNil(t, rows[1].Rainy)
	assert.False(t, *rows[1].Rainy)
	assert.Nil(t, rows[2].Rainy)
	assert.Equal(t, "RAD_NL25_RAC_RT_202401011010.h5", rows[2].Filename)
}

func TestRead_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong header", "file,label\na.h5,True\n"},
		{"bad value", "filename,rainy\na.h5,yes\n"},
		{"lowercase value", "filename,rainy\na.h5,true\n"},
		{"extra column", "filename,rainy\na.h5,True,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
