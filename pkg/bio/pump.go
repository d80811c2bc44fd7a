package bio

import "errors"

// Pair is the two directions of one connection as seen by a single endpoint.
type Pair struct {
	// In carries bytes from the peer to this endpoint.
	In *Buffer
	// Out carries bytes from this endpoint to the peer.
	Out *Buffer
}

// NewPair returns a pair of unbounded buffers.
func NewPair() Pair {
	return Pair{In: New(), Out: New()}
}

// Transfer moves as many bytes as dst accepts from src to dst and returns the
// number moved. Bytes dst cannot take stay in src. Transfer must be the only
// reader of src while it runs.
func Transfer(dst, src *Buffer) int {
	src.mu.Lock()
	pending := make([]byte, len(src.data))
	copy(pending, src.data)
	src.mu.Unlock()

	if len(pending) == 0 {
		return 0
	}
	n, err := dst.Write(pending)
	if err != nil && !errors.Is(err, ErrWouldBlock) && n == 0 {
		return 0
	}

	src.mu.Lock()
	src.data = src.data[n:]
	src.nread += int64(n)
	src.mu.Unlock()
	return n
}

// Pump moves bytes in both directions between two endpoints' pairs: a.Out to
// b.In and b.Out to a.In. It returns the total number of bytes moved.
func Pump(a, b Pair) int {
	return Transfer(b.In, a.Out) + Transfer(a.In, b.Out)
}
