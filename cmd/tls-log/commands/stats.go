package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/mash-protocol/mash-tls/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents         int
	EventsByLayer       map[log.Layer]int
	EventsByCategory    map[log.Category]int
	EventsByDirection   map[log.Direction]int
	HandshakesByVersion map[string]int
	Sessions            map[string]*SessionStats
	Errors              int
	TimeRange           struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single session.
type SessionStats struct {
	FirstSeen      time.Time
	LastSeen       time.Time
	Events         int
	Role           log.Role
	ServerName     string
	Version        string
	CipherSuite    string
	Renegotiations int
	BytesIn        int
	BytesOut       int
	FinalState     string
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := collectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func collectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:       make(map[log.Layer]int),
		EventsByCategory:    make(map[log.Category]int),
		EventsByDirection:   make(map[log.Direction]int),
		HandshakesByVersion: make(map[string]int),
		Sessions:            make(map[string]*SessionStats),
	}

	for event, err := range reader.All() {
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByLayer[event.Layer]++
		stats.EventsByCategory[event.Category]++
		if event.Record != nil {
			stats.EventsByDirection[event.Direction]++
		}

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		sess, ok := stats.Sessions[event.SessionID]
		if !ok {
			sess = &SessionStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
				Role:      event.LocalRole,
			}
			stats.Sessions[event.SessionID] = sess
		}
		sess.Events++
		if event.Timestamp.After(sess.LastSeen) {
			sess.LastSeen = event.Timestamp
		}
		if event.ServerName != "" && sess.ServerName == "" {
			sess.ServerName = event.ServerName
		}

		switch {
		case event.Record != nil:
			if event.Direction == log.DirectionIn {
				sess.BytesIn += event.Record.Length
			} else {
				sess.BytesOut += event.Record.Length
			}
		case event.StateChange != nil:
			sess.FinalState = event.StateChange.NewState
		case event.Handshake != nil:
			stats.HandshakesByVersion[event.Handshake.Version]++
			sess.Version = event.Handshake.Version
			sess.CipherSuite = event.Handshake.CipherSuite
			if event.Handshake.Renegotiation {
				sess.Renegotiations++
			}
		case event.Error != nil:
			stats.Errors++
		}
	}

	return stats, nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== TLS Session Log Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerRecord, log.LayerHandshake, log.LayerSession} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryRecord, log.CategoryState, log.CategoryHandshake, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Records by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.HandshakesByVersion) > 0 {
		versions := make([]string, 0, len(stats.HandshakesByVersion))
		for v := range stats.HandshakesByVersion {
			versions = append(versions, v)
		}
		sort.Strings(versions)
		fmt.Fprintln(w, "Handshakes by Version:")
		for _, v := range versions {
			fmt.Fprintf(w, "  %-12s %d\n", v+":", stats.HandshakesByVersion[v])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		// Sort by first seen time
		type sessionInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessionInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessionInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %s, %d events, duration %s\n",
				shortenSessionID(s.id), s.stats.Role, s.stats.Events, duration)
			if s.stats.ServerName != "" {
				fmt.Fprintf(w, "           ServerName: %s\n", s.stats.ServerName)
			}
			if s.stats.Version != "" {
				fmt.Fprintf(w, "           Negotiated: %s %s\n", s.stats.Version, s.stats.CipherSuite)
			}
			if s.stats.Renegotiations > 0 {
				fmt.Fprintf(w, "           Renegotiations: %d\n", s.stats.Renegotiations)
			}
			if s.stats.BytesIn > 0 || s.stats.BytesOut > 0 {
				fmt.Fprintf(w, "           Record bytes: %d in, %d out\n", s.stats.BytesIn, s.stats.BytesOut)
			}
			if s.stats.FinalState != "" {
				fmt.Fprintf(w, "           State: %s\n", s.stats.FinalState)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
