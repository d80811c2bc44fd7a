// Package protocol is the registry of TLS/SSL protocol versions and the method
// descriptors a context is constructed from.
//
// The registry is loaded once per process from an embedded table. Every
// exported lookup initializes it lazily, so callers never need to call
// EnsureInitialized themselves unless they want to surface a load error early.
package protocol

import (
	"fmt"
	"strings"
)

// Protocols is a bitmask over protocol versions. The numeric values match the
// managed SslProtocols enumeration so masks can cross that boundary unchanged.
type Protocols uint32

// Protocol version bits.
const (
	None  Protocols = 0
	SSL2  Protocols = 12
	SSL3  Protocols = 48
	TLS   Protocols = 192
	TLS11 Protocols = 768
	TLS12 Protocols = 3072
	TLS13 Protocols = 12288

	// Default enables every version the crypto provider can negotiate.
	Default = TLS | TLS11 | TLS12 | TLS13
)

// Has reports whether any bit of p is enabled in the mask.
func (m Protocols) Has(p Protocols) bool {
	return m&p != 0
}

// String returns the enabled protocol names joined by "|".
func (m Protocols) String() string {
	if m == None {
		return "NONE"
	}
	var names []string
	rest := m
	for _, info := range All() {
		if m.Has(info.Mask) {
			names = append(names, info.Name)
			rest &^= info.Mask
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(names, "|")
}

// Range returns the wire versions bounding the lowest contiguous run of
// provider-supported versions enabled in the mask. Versions above a gap are
// not negotiable, matching how a min/max version pair is derived from a
// disable-list.
func (m Protocols) Range() (lo, hi uint16, ok bool) {
	for _, info := range All() {
		if !info.Supported {
			continue
		}
		if m.Has(info.Mask) {
			if !ok {
				lo, ok = info.Wire, true
			}
			hi = info.Wire
			continue
		}
		if ok {
			break
		}
	}
	return lo, hi, ok
}

// Parse converts protocol names or labels ("TLS12", "TLSv1.2", "tls1.2")
// into a mask.
func Parse(names []string) (Protocols, error) {
	var m Protocols
	for _, name := range names {
		info, ok := lookupName(name)
		if !ok {
			return None, fmt.Errorf("%w: %q", ErrUnknownProtocol, name)
		}
		m |= info.Mask
	}
	return m, nil
}

func lookupName(name string) (Info, bool) {
	norm := normalize(name)
	for _, info := range All() {
		if normalize(info.Name) == norm || normalize(info.Label) == norm {
			return info, true
		}
	}
	// "TLS1.0" and "TLS10" are common spellings of the first TLS version.
	if norm == "TLS10" {
		return Lookup(TLS)
	}
	return Info{}, false
}

func normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "V", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}
