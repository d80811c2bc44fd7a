package commands

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/mash-protocol/mash-tls/pkg/log"
)

// readEvents reads every event from path.
func readEvents(t *testing.T, path string) []log.Event {
	t.Helper()
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	var events []log.Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		events = append(events, event)
	}
	return events
}

func TestFilterBySessionID(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, SessionID: "sess-1", Category: log.CategoryRecord},
		{Timestamp: ts, SessionID: "sess-2", Category: log.CategoryRecord},
		{Timestamp: ts, SessionID: "sess-1", Category: log.CategoryState},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.tlog")

	n, err := RunFilter(path, FilterOptions{
		Output:    outPath,
		SessionID: "sess-1",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("RunFilter returned %d, want 2", n)
	}

	got := readEvents(t, outPath)
	for _, event := range got {
		if event.SessionID != "sess-1" {
			t.Errorf("expected sess-1, got %s", event.SessionID)
		}
	}
	if len(got) != 2 {
		t.Errorf("expected 2 events, got %d", len(got))
	}
}

func TestFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: base, SessionID: "sess-1"},
		{Timestamp: base.Add(time.Hour), SessionID: "sess-1"},
		{Timestamp: base.Add(2 * time.Hour), SessionID: "sess-1"},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.tlog")

	_, err := RunFilter(path, FilterOptions{
		Output:    outPath,
		TimeStart: base.Add(30 * time.Minute).Format(time.RFC3339),
		TimeEnd:   base.Add(90 * time.Minute).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readEvents(t, outPath)
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if !got[0].Timestamp.Equal(base.Add(time.Hour)) {
		t.Errorf("unexpected event at %s", got[0].Timestamp)
	}
}

func TestFilterByRoleAndServerName(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, LocalRole: log.RoleClient, ServerName: "a.test"},
		{Timestamp: ts, LocalRole: log.RoleServer, ServerName: "a.test"},
		{Timestamp: ts, LocalRole: log.RoleServer, ServerName: "b.test"},
		{Timestamp: ts, LocalRole: log.RoleServer},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.tlog")

	n, err := RunFilter(path, FilterOptions{
		Output:     outPath,
		Role:       "SERVER",
		ServerName: "a.test",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 event, got %d", n)
	}
}

func TestFilterCommandByLayer(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Layer: log.LayerRecord, Category: log.CategoryRecord},
		{Timestamp: ts, Layer: log.LayerHandshake, Category: log.CategoryHandshake},
		{Timestamp: ts, Layer: log.LayerSession, Category: log.CategoryState},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.tlog")

	_, err := RunFilter(path, FilterOptions{
		Output: outPath,
		Layer:  "handshake",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readEvents(t, outPath)
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Layer != log.LayerHandshake {
		t.Errorf("expected handshake layer, got %v", got[0].Layer)
	}
}

func TestFilterInvalidOptions(t *testing.T) {
	path := createTestLogFile(t, []log.Event{{SessionID: "sess-1"}})
	outPath := filepath.Join(t.TempDir(), "filtered.tlog")

	tests := []struct {
		name string
		opts FilterOptions
	}{
		{"role", FilterOptions{Output: outPath, Role: "observer"}},
		{"layer", FilterOptions{Output: outPath, Layer: "wire"}},
		{"direction", FilterOptions{Output: outPath, Direction: "sideways"}},
		{"category", FilterOptions{Output: outPath, Category: "message"}},
		{"time-start", FilterOptions{Output: outPath, TimeStart: "yesterday"}},
		{"time-end", FilterOptions{Output: outPath, TimeEnd: "tomorrow"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RunFilter(path, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}
