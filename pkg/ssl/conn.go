package ssl

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/mash-protocol/mash-tls/pkg/bio"
)

// bioConn presents the session's buffers to the provider as a net.Conn.
// Reads and writes that cannot make progress park the engine goroutine.
type bioConn struct {
	s *Session
}

func (c *bioConn) Read(p []byte) (int, error) {
	s := c.s
	if len(p) == 0 {
		return 0, nil
	}
	for {
		select {
		case <-s.quit:
			return 0, errAbandoned
		default:
		}

		n, err := s.rbio.Read(p)
		if n > 0 {
			s.inScan.feed(p[:n], s.inboundRecord, s.inboundRecordEnd)
			s.cfg.metrics.RecordBytes("in", n)
			return n, nil
		}
		switch {
		case err == nil, errors.Is(err, bio.ErrWouldBlock):
			if err := s.park(ErrorWantRead); err != nil {
				return 0, err
			}
		default:
			return 0, &TransportError{Op: "read", Err: err}
		}
	}
}

func (c *bioConn) Write(p []byte) (int, error) {
	s := c.s
	written := 0
	for written < len(p) {
		select {
		case <-s.quit:
			return written, errAbandoned
		default:
		}

		n, err := s.wbio.Write(p[written:])
		if n > 0 {
			s.outScan.feed(p[written:written+n], s.outboundRecord, nil)
			s.cfg.metrics.RecordBytes("out", n)
			written += n
		}
		switch {
		case err == nil:
			if n == 0 {
				return written, &TransportError{Op: "write", Err: io.ErrShortWrite}
			}
		case errors.Is(err, bio.ErrWouldBlock):
			if written < len(p) {
				if err := s.park(ErrorWantWrite); err != nil {
					return written, err
				}
			}
		default:
			return written, &TransportError{Op: "write", Err: err}
		}
	}
	return written, nil
}

// Close is never called by the session; Destroy releases parked engines.
func (c *bioConn) Close() error { return nil }

func (c *bioConn) LocalAddr() net.Addr  { return bioAddr{} }
func (c *bioConn) RemoteAddr() net.Addr { return bioAddr{} }

func (c *bioConn) SetDeadline(time.Time) error      { return nil }
func (c *bioConn) SetReadDeadline(time.Time) error  { return nil }
func (c *bioConn) SetWriteDeadline(time.Time) error { return nil }

type bioAddr struct{}

func (bioAddr) Network() string { return "bio" }
func (bioAddr) String() string  { return "bio" }

// Compile-time interface satisfaction check.
var _ net.Conn = (*bioConn)(nil)
