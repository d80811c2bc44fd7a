package ssl

// The provider's tls.Conn is blocking. Each operation runs on its own engine
// goroutine, and the caller and that goroutine hand control back and forth
// so that exactly one of them runs at a time. When the engine needs bytes
// that are not in the read buffer, or room that is not in the write buffer,
// it parks and the caller returns want-read or want-write. The next call on
// the same lane resumes it where it stopped.

// event is what an engine goroutine reports to the caller.
type event struct {
	parked bool
	want   ErrorCode
	n      int
	err    error
}

// task is one provider operation in flight.
type task struct {
	kind   string
	events chan event
	resume chan struct{}
	want   ErrorCode
}

// lane holds the parked task of one direction. The inbound lane runs the
// handshake and reads; the outbound lane runs writes and close_notify.
type lane struct {
	name    string
	pending *task
}

// step starts fn on l, or resumes the task already parked there, and waits
// until it parks or finishes. A finished task of another kind is returned
// as is; the caller tells by ev.kind.
func (s *Session) step(l *lane, kind string, fn func() (int, error)) (event, string) {
	t := l.pending
	if t == nil {
		t = &task{
			kind:   kind,
			events: make(chan event),
			resume: make(chan struct{}),
		}
		s.running = t
		go s.run(t, fn)
	} else {
		s.running = t
		select {
		case t.resume <- struct{}{}:
		case <-s.quit:
			return event{err: errAbandoned}, t.kind
		}
	}

	var ev event
	select {
	case ev = <-t.events:
	case <-s.quit:
		ev = event{err: errAbandoned}
	}
	s.running = nil

	if ev.parked {
		t.want = ev.want
		l.pending = t
	} else {
		l.pending = nil
	}
	return ev, t.kind
}

func (s *Session) run(t *task, fn func() (int, error)) {
	n, err := fn()
	select {
	case t.events <- event{n: n, err: err}:
	case <-s.quit:
	}
}

// park suspends the running engine goroutine until the caller resumes it.
// It is only called from inside the provider, on an engine goroutine.
func (s *Session) park(want ErrorCode) error {
	t := s.running
	if t == nil {
		return errAbandoned
	}
	select {
	case t.events <- event{parked: true, want: want}:
	case <-s.quit:
		return errAbandoned
	}
	select {
	case <-t.resume:
		return nil
	case <-s.quit:
		return errAbandoned
	}
}
