package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.RecordHandshake("client", "TLSv1.2", false, 3*time.Millisecond)
	c.RecordHandshake("client", "TLSv1.2", true, 0)
	c.RecordFailure("server", "handshake", "SSL")
	c.RecordBytes("in", 100)
	c.RecordBytes("in", 28)
	c.RecordBytes("out", 0)
	c.RecordRecord("out", "HANDSHAKE")
	c.RecordShutdown("quiet")
	c.SessionOpened()
	c.SessionOpened()
	c.SessionClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.handshakes.WithLabelValues("client", "TLSv1.2", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.handshakes.WithLabelValues("client", "TLSv1.2", "true")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.handshakeDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("server", "handshake", "SSL")))
	assert.Equal(t, 128.0, testutil.ToFloat64(c.bytes.WithLabelValues("in")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.bytes), "zero-byte transfers add no series")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.records.WithLabelValues("out", "HANDSHAKE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.shutdowns.WithLabelValues("quiet")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.activeSessions))
}

func TestCollectorExposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := MustNewCollector(reg)
	c.RecordShutdown("bidirectional")

	expected := `
# HELP tls_session_shutdowns_total Completed session shutdowns.
# TYPE tls_session_shutdowns_total counter
tls_session_shutdowns_total{mode="bidirectional"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "tls_session_shutdowns_total")
	assert.NoError(t, err)
}

func TestCollectorDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
	assert.Panics(t, func() { MustNewCollector(reg) })
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.RecordHandshake("client", "TLSv1.3", false, time.Second)
	c.RecordFailure("client", "read", "SYSCALL")
	c.RecordBytes("out", 10)
	c.RecordRecord("in", "ALERT")
	c.RecordShutdown("quiet")
	c.SessionOpened()
	c.SessionClosed()
}

func TestUnregisteredCollector(t *testing.T) {
	c, err := NewCollector(nil)
	require.NoError(t, err)
	c.SessionOpened()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.activeSessions))
}
