package csv

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/climate-index-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func testRecords() []domain.LongRecord {
	return []domain.LongRecord{
		{Date: time.Date(1985, time.January, 1, 0, 0, 0, 0, time.UTC), Anomaly: ptr(1.2)},
		{Date: time.Date(1985, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(1985, time.March, 1, 0, 0, 0, 0, time.UTC), Anomaly: ptr(0)},
		{Date: time.Date(1985, time.April, 1, 0, 0, 0, 0, time.UTC), Anomaly: ptr(-0.1)},
	}
}

const wantCSV = "Date,soi_anomaly\n" +
	"1985-01-01,1.2\n" +
	"1985-02-01,\n" +
	"1985-03-01,0.0\n" +
	"1985-04-01,-0.1\n"

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testRecords()))
	assert.Equal(t, wantCSV, buf.String())
}

func TestEncode_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil))
	assert.Equal(t, "Date,soi_anomaly\n", buf.String())
}

func TestWriter_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output_data", "soi_index.csv")
	w := NewWriter(path, slog.Default())

	require.NoError(t, w.Load(context.Background(), testRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, wantCSV, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriter_Load_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soi.csv")
	w := NewWriter(path, slog.Default())

	require.NoError(t, w.Load(context.Background(), testRecords()))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, w.Load(context.Background(), testRecords()))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWriter_Load_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soi.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewWriter(path, slog.Default()).Load(ctx, testRecords())
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, path)
}

func TestWriter_Name(t *testing.T) {
	assert.Equal(t, "csv", NewWriter("x.csv", slog.Default()).Name())
}
