package server

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/toastq/internal/core/notify"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	a := notify.Notification[string]{ID: "a", Severity: notify.SeverityError, Visible: true}
	b := notify.Notification[string]{ID: "b", Visible: true}

	m.Observe([]notify.Notification[string]{a})
	m.Observe([]notify.Notification[string]{b, a})

	assert.InDelta(t, 1, testutil.ToFloat64(m.created.WithLabelValues("error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.created.WithLabelValues("unset")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.active), 0)

	a.Visible = false
	m.Observe([]notify.Notification[string]{b, a})
	m.Observe([]notify.Notification[string]{b, a})

	assert.InDelta(t, 1, testutil.ToFloat64(m.dismissed), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.active), 0)

	m.Observe(nil)

	assert.InDelta(t, 2, testutil.ToFloat64(m.removed), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.active), 0)
}

func TestMetrics_SetStreamClients(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.SetStreamClients(3)
	assert.InDelta(t, 3, testutil.ToFloat64(m.streamClients), 0)
}
