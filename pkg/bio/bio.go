// Package bio provides in-memory byte-stream endpoints that a TLS session
// reads ciphertext from and writes ciphertext to.
//
// A Buffer never blocks. An empty buffer reports ErrWouldBlock on Read and a
// full bounded buffer reports ErrWouldBlock on Write, which the session layer
// surfaces to its caller as want-read / want-write. Moving bytes between two
// sessions' buffers ("pumping") is the caller's job; Transfer and Pump help.
package bio

import (
	"errors"
	"io"
	"sync"
)

// Buffer errors.
var (
	// ErrWouldBlock reports that no progress is possible until the other
	// side of the buffer is serviced.
	ErrWouldBlock = errors.New("bio: operation would block")

	// ErrClosed is returned by Write after CloseWrite.
	ErrClosed = errors.New("bio: write to closed buffer")
)

// Buffer is a FIFO byte stream. It is safe for concurrent use, so a pump
// goroutine may feed a buffer that a session drains.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	limit  int
	eof    bool
	err    error
	nread  int64
	nwrite int64
}

// New returns an unbounded buffer.
func New() *Buffer {
	return &Buffer{}
}

// NewLimited returns a buffer holding at most limit unread bytes.
// A limit of zero or less means unbounded.
func NewLimited(limit int) *Buffer {
	if limit < 0 {
		limit = 0
	}
	return &Buffer{limit: limit}
}

// Read drains up to len(p) bytes. With nothing buffered it returns
// ErrWouldBlock, or io.EOF once CloseWrite was called, or the error given to
// Fail.
func (b *Buffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(p) == 0 {
		return 0, nil
	}
	if len(b.data) == 0 {
		switch {
		case b.err != nil:
			return 0, b.err
		case b.eof:
			return 0, io.EOF
		default:
			return 0, ErrWouldBlock
		}
	}
	n := copy(p, b.data)
	b.data = b.data[n:]
	if len(b.data) == 0 {
		// Let the backing array be reused instead of growing forever.
		b.data = b.data[:0:0]
	}
	b.nread += int64(n)
	return n, nil
}

// Write appends p. A bounded buffer accepts what fits and returns
// ErrWouldBlock with the short count.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err != nil {
		return 0, b.err
	}
	if b.eof {
		return 0, ErrClosed
	}

	n := len(p)
	if b.limit > 0 {
		if free := b.limit - len(b.data); n > free {
			n = free
		}
	}
	b.data = append(b.data, p[:n]...)
	b.nwrite += int64(n)
	if n < len(p) {
		return n, ErrWouldBlock
	}
	return n, nil
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Free returns how many bytes Write can accept, or -1 when unbounded.
func (b *Buffer) Free() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.limit <= 0 {
		return -1
	}
	return b.limit - len(b.data)
}

// CloseWrite marks the end of the stream. Buffered bytes remain readable;
// after them Read returns io.EOF.
func (b *Buffer) CloseWrite() {
	b.mu.Lock()
	b.eof = true
	b.mu.Unlock()
}

// Fail makes every later Read (once drained) and Write return err. It models
// a transport fault underneath the session.
func (b *Buffer) Fail(err error) {
	if err == nil {
		return
	}
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
}

// Stats returns the total bytes written into and read out of the buffer.
func (b *Buffer) Stats() (written, read int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nwrite, b.nread
}

// Compile-time interface satisfaction checks.
var (
	_ io.Reader = (*Buffer)(nil)
	_ io.Writer = (*Buffer)(nil)
)
