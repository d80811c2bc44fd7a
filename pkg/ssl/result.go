package ssl

// Result is the outcome of a handshake, read, write or shutdown step.
//
// N keeps the native sign convention: positive for progress (bytes moved, or
// 1 for a completed handshake or shutdown), zero for a clean close or a
// shutdown still awaiting the peer, negative otherwise. Code tells a caller
// which of those it is without inspecting N.
type Result struct {
	N    int
	Code ErrorCode
	err  error
}

// OK reports whether the step succeeded.
func (r Result) OK() bool { return r.Code == ErrorNone }

// WouldBlock reports whether the step needs the buffers pumped before it can
// make progress. It is a retry signal, not a failure.
func (r Result) WouldBlock() bool {
	return r.Code == ErrorWantRead || r.Code == ErrorWantWrite
}

// Closed reports whether the peer ended the session with close_notify.
func (r Result) Closed() bool { return r.Code == ErrorZeroReturn }

// Fatal reports whether the step failed for good.
func (r Result) Fatal() bool {
	return r.Code == ErrorSSL || r.Code == ErrorSyscall
}

// Err returns the *Error describing a non-successful result, or nil.
func (r Result) Err() error { return r.err }

func (r Result) String() string {
	if r.err != nil {
		return r.err.Error()
	}
	return "ssl: ok"
}
