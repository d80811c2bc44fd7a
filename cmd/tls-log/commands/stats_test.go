package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/mash-tls/pkg/log"
)

func sessionEvents(id string, role log.Role, base time.Time, renegotiated bool) []log.Event {
	events := []log.Event{
		{
			Timestamp: base, SessionID: id, LocalRole: role,
			Layer: log.LayerSession, Category: log.CategoryState,
			StateChange: &log.StateChangeEvent{OldState: "ROLE_SET", NewState: "HANDSHAKING"},
		},
		{
			Timestamp: base.Add(time.Millisecond), SessionID: id, LocalRole: role, ServerName: "server.test",
			Direction: log.DirectionOut, Layer: log.LayerRecord, Category: log.CategoryRecord,
			Record: &log.RecordEvent{ContentType: log.ContentHandshake, Version: 0x0301, Length: 300},
		},
		{
			Timestamp: base.Add(2 * time.Millisecond), SessionID: id, LocalRole: role,
			Direction: log.DirectionIn, Layer: log.LayerRecord, Category: log.CategoryRecord,
			Record: &log.RecordEvent{ContentType: log.ContentHandshake, Version: 0x0303, Length: 1200},
		},
		{
			Timestamp: base.Add(3 * time.Millisecond), SessionID: id, LocalRole: role,
			Layer: log.LayerHandshake, Category: log.CategoryHandshake,
			Handshake: &log.HandshakeEvent{Version: "TLSv1.2", CipherSuite: "TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256"},
		},
	}
	if renegotiated {
		events = append(events, log.Event{
			Timestamp: base.Add(4 * time.Millisecond), SessionID: id, LocalRole: role,
			Layer: log.LayerHandshake, Category: log.CategoryHandshake,
			Handshake: &log.HandshakeEvent{Version: "TLSv1.2", CipherSuite: "TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256", Renegotiation: true},
		})
	}
	return events
}

func TestCollectStats(t *testing.T) {
	base := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := sessionEvents("client-session", log.RoleClient, base, true)
	events = append(events, sessionEvents("server-session", log.RoleServer, base.Add(time.Second), false)...)
	code := 1
	events = append(events, log.Event{
		Timestamp: base.Add(2 * time.Second), SessionID: "server-session", LocalRole: log.RoleServer,
		Layer: log.LayerSession, Category: log.CategoryError,
		Error: &log.ErrorEventData{Layer: log.LayerSession, Message: "bad record MAC", Code: &code},
	})

	stats, err := collectStats(createTestLogFile(t, events))
	require.NoError(t, err)

	assert.Equal(t, len(events), stats.TotalEvents)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 3, stats.HandshakesByVersion["TLSv1.2"])
	assert.Equal(t, 2, stats.EventsByDirection[log.DirectionIn])
	assert.Equal(t, 2, stats.EventsByDirection[log.DirectionOut])
	assert.Equal(t, base, stats.TimeRange.Start)
	assert.Equal(t, base.Add(2*time.Second), stats.TimeRange.End)

	require.Len(t, stats.Sessions, 2)
	client := stats.Sessions["client-session"]
	assert.Equal(t, log.RoleClient, client.Role)
	assert.Equal(t, "server.test", client.ServerName)
	assert.Equal(t, 1, client.Renegotiations)
	assert.Equal(t, 1200, client.BytesIn)
	assert.Equal(t, 300, client.BytesOut)
	assert.Equal(t, "HANDSHAKING", client.FinalState)

	server := stats.Sessions["server-session"]
	assert.Equal(t, log.RoleServer, server.Role)
	assert.Zero(t, server.Renegotiations)
}

func TestRunStatsOutput(t *testing.T) {
	base := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, sessionEvents("0123456789abcdef", log.RoleClient, base, false))

	var buf bytes.Buffer
	require.NoError(t, RunStats(path, &buf))
	out := buf.String()

	for _, want := range []string{
		"Total Events: 4",
		"Sessions: 1",
		"[01234567] CLIENT",
		"Negotiated: TLSv1.2",
		"Record bytes: 1200 in, 300 out",
		"TLSv1.2:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Errors:") {
		t.Errorf("unexpected error section:\n%s", out)
	}
}

func TestRunStatsMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := RunStats("/nonexistent/path.tlog", &buf); err == nil {
		t.Error("expected error for missing file")
	}
}
