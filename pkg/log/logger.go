package log

// Logger receives protocol events from sessions. A session calls Log both
// from the caller's goroutine and from the goroutine running its provider,
// so implementations must be safe for concurrent use and should not block.
// A nil Logger disables capture.
type Logger interface {
	Log(event Event)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(Event)

// Log calls f(event).
func (f LoggerFunc) Log(event Event) { f(event) }

// NoopLogger discards all events. The zero value is ready to use.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// OnlyCategories returns a Logger that forwards to next the events whose
// category is one of cats. Record events are by far the most frequent, so
// a console logger usually keeps only state, handshake and error events.
func OnlyCategories(next Logger, cats ...Category) Logger {
	var keep [CategoryError + 1]bool
	for _, c := range cats {
		if c <= CategoryError {
			keep[c] = true
		}
	}
	return LoggerFunc(func(ev Event) {
		if ev.Category <= CategoryError && keep[ev.Category] {
			next.Log(ev)
		}
	})
}

var (
	_ Logger = NoopLogger{}
	_ Logger = LoggerFunc(nil)
)
