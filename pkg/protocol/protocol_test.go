package protocol

import (
	"crypto/tls"
	"errors"
	"sync"
	"testing"
)

func TestEnsureInitializedConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- EnsureInitialized()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("EnsureInitialized() error = %v", err)
		}
	}
}

func TestAllAscendingWireOrder(t *testing.T) {
	all := All()
	if len(all) != 6 {
		t.Fatalf("len(All()) = %d, want 6", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Wire >= all[i].Wire {
			t.Errorf("All()[%d].Wire = %#x not below All()[%d].Wire = %#x", i-1, all[i-1].Wire, i, all[i].Wire)
		}
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		wire  uint16
		label string
		mask  Protocols
	}{
		{0x0300, "SSLv3", SSL3},
		{tls.VersionTLS10, "TLSv1", TLS},
		{tls.VersionTLS11, "TLSv1.1", TLS11},
		{tls.VersionTLS12, "TLSv1.2", TLS12},
		{tls.VersionTLS13, "TLSv1.3", TLS13},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := Label(tt.wire); got != tt.label {
				t.Errorf("Label(%#x) = %q, want %q", tt.wire, got, tt.label)
			}
			if got := FromLabel(tt.label); got != tt.mask {
				t.Errorf("FromLabel(%q) = %v, want %v", tt.label, got, tt.mask)
			}
		})
	}

	if got := Label(0x7f00); got != UnknownLabel {
		t.Errorf("Label(0x7f00) = %q, want %q", got, UnknownLabel)
	}
	if got := FromLabel("QUIC"); got != None {
		t.Errorf("FromLabel(QUIC) = %v, want None", got)
	}
}

func TestRange(t *testing.T) {
	tests := []struct {
		name   string
		mask   Protocols
		lo, hi uint16
		ok     bool
	}{
		{"tls12 only", TLS12, tls.VersionTLS12, tls.VersionTLS12, true},
		{"default", Default, tls.VersionTLS10, tls.VersionTLS13, true},
		{"tls11 and tls12", TLS11 | TLS12, tls.VersionTLS11, tls.VersionTLS12, true},
		{"gap stops the run", TLS | TLS12 | TLS13, tls.VersionTLS10, tls.VersionTLS10, true},
		{"unsupported bits skipped", SSL3 | TLS12, tls.VersionTLS12, tls.VersionTLS12, true},
		{"ssl only", SSL2 | SSL3, 0, 0, false},
		{"none", None, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, ok := tt.mask.Range()
			if ok != tt.ok || lo != tt.lo || hi != tt.hi {
				t.Errorf("Range() = (%#x, %#x, %v), want (%#x, %#x, %v)", lo, hi, ok, tt.lo, tt.hi, tt.ok)
			}
		})
	}
}

func TestParse(t *testing.T) {
	m, err := Parse([]string{"TLSv1.2", "tls13", "TLS1.0"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if m != TLS|TLS12|TLS13 {
		t.Errorf("Parse() = %v, want TLS|TLS12|TLS13", m)
	}

	_, err = Parse([]string{"DTLS1.2"})
	if !errors.Is(err, ErrUnknownProtocol) {
		t.Errorf("Parse(DTLS1.2) error = %v, want ErrUnknownProtocol", err)
	}
}

func TestProtocolsString(t *testing.T) {
	if got := (TLS12 | TLS13).String(); got != "TLS12|TLS13" {
		t.Errorf("String() = %q, want %q", got, "TLS12|TLS13")
	}
	if got := None.String(); got != "NONE" {
		t.Errorf("String() = %q, want NONE", got)
	}
	if got := (TLS | 1).String(); got != "TLS|0x1" {
		t.Errorf("String() = %q, want %q", got, "TLS|0x1")
	}
}

func TestMethods(t *testing.T) {
	tests := []struct {
		method *Method
		name   string
		want   Protocols
	}{
		{NegotiateMethod(), "SSLv23", SSL2 | SSL3 | Default},
		{SSL3Method(), "SSLv3", SSL3},
		{TLS10Method(), "TLSv1", TLS},
		{TLS11Method(), "TLSv1_1", TLS11},
		{TLS12Method(), "TLSv1_2", TLS12},
		{TLS13Method(), "TLSv1_3", TLS13},
	}
	for _, tt := range tests {
		if tt.method.Name() != tt.name {
			t.Errorf("Name() = %q, want %q", tt.method.Name(), tt.name)
		}
		if tt.method.Versions() != tt.want {
			t.Errorf("%s.Versions() = %v, want %v", tt.name, tt.method.Versions(), tt.want)
		}
	}

	if NegotiateMethod() != NegotiateMethod() {
		t.Error("method descriptors should be shared")
	}

	if _, err := MethodByName("DTLSv1"); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("MethodByName(DTLSv1) error = %v, want ErrUnknownMethod", err)
	}
}

func TestLoadRegistryRejectsUnknownProtocol(t *testing.T) {
	data := []byte(`
protocols:
  - {name: TLS12, label: TLSv1.2, mask: 3072, wire: 0x0303, supported: true}
methods:
  - {name: Broken, protocols: [TLS14]}
`)
	if _, err := loadRegistry(data); !errors.Is(err, ErrUnknownProtocol) {
		t.Errorf("loadRegistry() error = %v, want ErrUnknownProtocol", err)
	}
}
