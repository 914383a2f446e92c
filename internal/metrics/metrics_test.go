package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	l, err := NewLifecycle(reg, "dynact")
	require.NoError(t, err)

	l.ObserveOperation("start", OutcomeOK, 2*time.Millisecond)
	l.ObserveOperation("start", OutcomeOK, time.Millisecond)
	l.ObserveOperation("start", "denied", time.Millisecond)
	l.SetLive(3)

	require.Equal(t, 2.0, testutil.ToFloat64(l.operations.WithLabelValues("start", OutcomeOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(l.operations.WithLabelValues("start", "denied")))
	require.Equal(t, 3.0, testutil.ToFloat64(l.live))
	require.Equal(t, 1, testutil.CollectAndCount(l.duration))
}

func TestLifecycle_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewLifecycle(reg, "dynact")
	require.NoError(t, err)
	_, err = NewLifecycle(reg, "dynact")
	require.Error(t, err)
}
