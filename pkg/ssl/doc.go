// Package ssl implements a TLS session layer that runs over caller-owned
// byte buffers instead of sockets.
//
// A Context holds configuration: the protocol versions to enable, the
// certificate and key to present, verification hooks and logging. Sessions
// created from it snapshot that configuration. A Session never blocks: each
// of DoHandshake, Read, Write and Shutdown advances as far as the attached
// buffers allow and returns a Result.
//
// # Driving a Session
//
//	ctx, _ := ssl.NewContext(protocol.NegotiateMethod())
//	s, _ := ssl.NewSession(ctx)
//	s.SetConnectState()
//	s.SetBuffers(in, out)
//
//	for {
//	    r := s.DoHandshake()
//	    if r.N == 1 {
//	        break
//	    }
//	    if !r.WouldBlock() {
//	        return r.Err()
//	    }
//	    // move ciphertext between out, the network and in
//	}
//
// # Results
//
// Result.N keeps the native sign convention and Result.Code classifies the
// outcome:
//
//   - NONE: progress; N is the byte count, or 1 for a finished handshake
//     or shutdown
//   - WANT_READ / WANT_WRITE: pump the buffers and call again
//   - ZERO_RETURN: the peer sent close_notify
//   - SYSCALL: the buffers themselves failed
//   - SSL: protocol failure; the session is unusable
//
// A failed session keeps returning the same Result. Calls that are invalid
// in the session's current state return an SSL result without changing that
// state.
//
// # Shutdown
//
// Shutdown sends close_notify and returns N = 0 until the peer's
// close_notify was read, then N = 1. With SetQuietShutdown it returns 1 at
// once without sending anything.
package ssl
