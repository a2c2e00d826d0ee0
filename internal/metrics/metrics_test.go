package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.IncLoads()
	m.ObserveSave(nil)
	m.ObserveSave(errors.New("disk"))
	m.ObserveGroups(3, 1)
	m.ObserveGroups(2, 1)
	m.IncWorldChange(OutcomeShared)
	m.IncWorldChange(OutcomeShared)
	m.IncWorldChange(OutcomeUnmanaged)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigLoads))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigSaves))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SaveErrors))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GroupsLoaded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GroupsSkipped))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WorldChanges.WithLabelValues(OutcomeShared)))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
	assert.Panics(t, func() { MustNew(reg) })
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncLoads()
		m.ObserveSave(nil)
		m.ObserveGroups(1, 0)
		m.IncReloads()
		m.IncWorldChange(OutcomeFailed)
	})
}
