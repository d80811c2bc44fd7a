package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mash-protocol/mash-tls/pkg/log"
)

func TestFormatRecordEvent(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	event := log.Event{
		Timestamp:  ts,
		SessionID:  "abc12345-6789-0123-4567-890abcdef012",
		Direction:  log.DirectionOut,
		Layer:      log.LayerRecord,
		Category:   log.CategoryRecord,
		LocalRole:  log.RoleClient,
		ServerName: "server.test",
		Record: &log.RecordEvent{
			ContentType: log.ContentApplicationData,
			Version:     0x0303,
			Length:      128,
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{
		"2026-01-28T10:15:32.123456Z",
		"[session:abc12345]",
		"CLIENT",
		"OUT",
		"RECORD",
		"APPLICATION_DATA",
		"ServerName: server.test",
		"Version: 0x0303",
		"128 bytes",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestFormatStateChangeEvent(t *testing.T) {
	event := log.Event{
		SessionID: "short",
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: "HANDSHAKING",
			NewState: "ERROR",
			Reason:   "certificate rejected",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "[session:short]") {
		t.Errorf("expected unshortened session ID, got: %s", output)
	}
	if !strings.Contains(output, "HANDSHAKING -> ERROR") {
		t.Errorf("expected transition, got: %s", output)
	}
	if !strings.Contains(output, "Reason: certificate rejected") {
		t.Errorf("expected reason, got: %s", output)
	}
	// State events carry no direction.
	if strings.Contains(output, " IN ") || strings.Contains(output, " OUT ") {
		t.Errorf("unexpected direction in state event: %s", output)
	}
}

func TestFormatHandshakeEvent(t *testing.T) {
	event := log.Event{
		SessionID: "abc12345",
		Layer:     log.LayerHandshake,
		Category:  log.CategoryHandshake,
		LocalRole: log.RoleServer,
		Handshake: &log.HandshakeEvent{
			Version:       "TLSv1.2",
			CipherSuite:   "TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384",
			PeerSubject:   "CN=client",
			Renegotiation: true,
			Duration:      2333 * time.Microsecond,
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{
		"SERVER",
		"Handshake",
		"Version: TLSv1.2",
		"CipherSuite: TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384",
		"Peer: CN=client",
		"Renegotiation: yes",
		"Duration: 2.333ms",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestFormatErrorEvent(t *testing.T) {
	code := 1
	event := log.Event{
		SessionID: "abc12345",
		Layer:     log.LayerSession,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerHandshake,
			Message: "remote error: tls: bad certificate",
			Code:    &code,
			Context: "DoHandshake",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{
		"Error",
		"Layer: HANDSHAKE",
		"Message: remote error: tls: bad certificate",
		"Code: 1",
		"Context: DoHandshake",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Nanosecond, "0.500us"},
		{1500 * time.Microsecond, "1.500ms"},
		{2500 * time.Millisecond, "2.500s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestParseFlags(t *testing.T) {
	if l, err := ParseLayerFlag("Handshake"); err != nil || l != log.LayerHandshake {
		t.Errorf("ParseLayerFlag(Handshake) = %v, %v", l, err)
	}
	if d, err := ParseDirectionFlag("IN"); err != nil || d != log.DirectionIn {
		t.Errorf("ParseDirectionFlag(IN) = %v, %v", d, err)
	}
	if c, err := ParseCategoryFlag("error"); err != nil || c != log.CategoryError {
		t.Errorf("ParseCategoryFlag(error) = %v, %v", c, err)
	}
	if r, err := parseRole("server"); err != nil || r != log.RoleServer {
		t.Errorf("parseRole(server) = %v, %v", r, err)
	}

	if _, err := ParseLayerFlag("transport"); err == nil {
		t.Error("expected error for unknown layer")
	}
	if _, err := ParseDirectionFlag("both"); err == nil {
		t.Error("expected error for unknown direction")
	}
	if _, err := ParseCategoryFlag("snapshot"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestRunViewFilters(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{
			Timestamp: ts, SessionID: "sess-in", Direction: log.DirectionIn,
			Layer: log.LayerRecord, Category: log.CategoryRecord,
			Record: &log.RecordEvent{ContentType: log.ContentHandshake, Length: 90},
		},
		{
			Timestamp: ts, SessionID: "sess-out", Direction: log.DirectionOut,
			Layer: log.LayerRecord, Category: log.CategoryRecord,
			Record: &log.RecordEvent{ContentType: log.ContentAlert, Length: 2},
		},
		{
			Timestamp: ts, SessionID: "sess-state",
			Layer: log.LayerSession, Category: log.CategoryState,
			StateChange: &log.StateChangeEvent{NewState: "CREATED"},
		},
	}
	path := createTestLogFile(t, events)

	in := log.DirectionIn
	rec := log.CategoryRecord
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Direction: &in, Category: &rec}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "[session:sess-in]") {
		t.Errorf("expected inbound record, got: %s", output)
	}
	if strings.Contains(output, "sess-out") || strings.Contains(output, "sess-state") {
		t.Errorf("filter let through other events: %s", output)
	}

	buf.Reset()
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	if got := strings.Count(buf.String(), "[session:"); got != 3 {
		t.Errorf("expected 3 events, got %d", got)
	}
	if !strings.Contains(buf.String(), "-> CREATED") {
		t.Errorf("expected initial state line, got: %s", buf.String())
	}
}

func TestRunViewMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := RunView("/nonexistent/path.tlog", ViewFilter{}, &buf); err == nil {
		t.Error("expected error for missing file")
	}
}
