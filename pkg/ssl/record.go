package ssl

import (
	"golang.org/x/crypto/cryptobyte"
)

// TLS record content types the session reacts to.
const (
	contentTypeChangeCipherSpec = 20
	contentTypeHandshake        = 22
)

// recordHeader is one TLS record header seen on a buffer.
type recordHeader struct {
	ContentType uint8
	Version     uint16
	Length      int
}

// recordScanner follows the record framing of one direction of ciphertext
// without buffering record bodies. Bytes may arrive in arbitrary chunks.
type recordScanner struct {
	hdr  []byte
	cur  recordHeader
	skip int
	lost bool
}

// feed consumes p. It calls start for every record header completed by p
// and end for every record whose body p completes.
func (r *recordScanner) feed(p []byte, start, end func(recordHeader)) {
	for len(p) > 0 && !r.lost {
		if r.skip > 0 {
			n := min(r.skip, len(p))
			r.skip -= n
			p = p[n:]
			if r.skip == 0 && end != nil {
				end(r.cur)
			}
			continue
		}

		n := min(recordHeaderLen-len(r.hdr), len(p))
		r.hdr = append(r.hdr, p[:n]...)
		p = p[n:]
		if len(r.hdr) < recordHeaderLen {
			return
		}

		h, ok := parseRecordHeader(r.hdr)
		r.hdr = r.hdr[:0]
		if !ok {
			r.lost = true
			return
		}
		r.cur = h
		r.skip = h.Length
		if start != nil {
			start(h)
		}
		if h.Length == 0 && end != nil {
			end(h)
		}
	}
}

func parseRecordHeader(b []byte) (recordHeader, bool) {
	var (
		h      recordHeader
		length uint16
	)
	s := cryptobyte.String(b)
	if !s.ReadUint8(&h.ContentType) || !s.ReadUint16(&h.Version) || !s.ReadUint16(&length) {
		return recordHeader{}, false
	}
	h.Length = int(length)
	return h, true
}
