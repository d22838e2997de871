package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotIncludesCounters(t *testing.T) {
	RowsRead.Add(3)
	ConversionErrors.WithLabelValues("matrix").Inc()

	snap, err := Snapshot()
	require.NoError(t, err)

	assert.Equal(t, testutil.ToFloat64(RowsRead), snap["libuseful_csv_rows_read_total"])
	assert.GreaterOrEqual(t, snap["libuseful_numeric_conversion_errors_total{source=matrix}"], 1.0)
}

func TestTimerObserves(t *testing.T) {
	d := NewTimer("metrics_test").Stop()
	assert.GreaterOrEqual(t, d.Nanoseconds(), int64(0))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(OperationDuration), 1)

	snap, err := Snapshot()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, snap["libuseful_operation_duration_seconds{operation=metrics_test}_count"], 1.0)
}
