package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mash-protocol/mash-tls/pkg/log"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.tlog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func TestExportToJSONL(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	events := []log.Event{
		{
			Timestamp: ts,
			SessionID: "abc12345",
			Direction: log.DirectionOut,
			Layer:     log.LayerRecord,
			Category:  log.CategoryRecord,
			Record: &log.RecordEvent{
				ContentType: log.ContentHandshake,
				Version:     0x0301,
				Length:      512,
			},
		},
		{
			Timestamp: ts.Add(time.Second),
			SessionID: "abc12345",
			Layer:     log.LayerHandshake,
			Category:  log.CategoryHandshake,
			Handshake: &log.HandshakeEvent{
				Version:     "TLSv1.3",
				CipherSuite: "TLS_AES_128_GCM_SHA256",
			},
		},
	}

	path := createTestLogFile(t, events)

	outPath := filepath.Join(t.TempDir(), "out.jsonl")
	err := RunExport(path, "jsonl", outPath)
	if err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var event1 map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &event1); err != nil {
		t.Fatalf("failed to parse line 1: %v", err)
	}
	if event1["SessionID"] != "abc12345" {
		t.Errorf("expected SessionID abc12345, got %v", event1["SessionID"])
	}

	var event2 log.Event
	if err := json.Unmarshal([]byte(lines[1]), &event2); err != nil {
		t.Fatalf("failed to parse line 2: %v", err)
	}
	if event2.Handshake == nil || event2.Handshake.Version != "TLSv1.3" {
		t.Errorf("expected TLSv1.3 handshake, got %+v", event2.Handshake)
	}
}

func TestExportToCSV(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 0, time.UTC)
	events := []log.Event{
		{
			Timestamp:  ts,
			SessionID:  "abc12345",
			Direction:  log.DirectionIn,
			Layer:      log.LayerRecord,
			Category:   log.CategoryRecord,
			LocalRole:  log.RoleServer,
			ServerName: "server.test",
			Record: &log.RecordEvent{
				ContentType: log.ContentApplicationData,
				Version:     0x0303,
				Length:      64,
			},
		},
		{
			Timestamp: ts,
			SessionID: "abc12345",
			Layer:     log.LayerSession,
			Category:  log.CategoryState,
			StateChange: &log.StateChangeEvent{
				OldState: "ESTABLISHED",
				NewState: "CLOSED",
			},
		},
	}

	path := createTestLogFile(t, events)

	outPath := filepath.Join(t.TempDir(), "out.csv")
	err := RunExport(path, "csv", outPath)
	if err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}

	if got := strings.Join(rows[0][:4], ","); got != "timestamp,session_id,role,direction" {
		t.Errorf("unexpected header: %s", got)
	}

	record := rows[1]
	if record[2] != "SERVER" {
		t.Errorf("role = %q, want SERVER", record[2])
	}
	if record[6] != "server.test" {
		t.Errorf("server_name = %q, want server.test", record[6])
	}
	if record[7] != log.ContentTypeName(log.ContentApplicationData) {
		t.Errorf("type = %q", record[7])
	}
	if record[8] != "64" {
		t.Errorf("length = %q, want 64", record[8])
	}

	if rows[2][7] != "state" || rows[2][8] != "" {
		t.Errorf("state row = %v", rows[2])
	}
}

func TestExportWritesToStdout(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 0, time.UTC)
	events := []log.Event{
		{
			Timestamp: ts,
			SessionID: "abc12345",
			Category:  log.CategoryRecord,
			Record:    &log.RecordEvent{ContentType: log.ContentAlert, Length: 2},
		},
	}

	path := createTestLogFile(t, events)

	// Capture stdout
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := RunExport(path, "jsonl", "") // empty output means stdout

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	var buf bytes.Buffer
	buf.ReadFrom(r)

	if buf.Len() == 0 {
		t.Error("expected output to stdout")
	}
}

func TestExportUnknownFormat(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, SessionID: "abc12345", Record: &log.RecordEvent{Length: 5}},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "out.xml")

	err := RunExport(path, "xml", outPath)
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("expected 'unknown format' error, got: %v", err)
	}
}
