package ssl

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/mash-protocol/mash-tls/pkg/bio"
	"github.com/mash-protocol/mash-tls/pkg/cert"
	"github.com/mash-protocol/mash-tls/pkg/log"
	"github.com/mash-protocol/mash-tls/pkg/protocol"
)

// testPKI is a CA with a server and a client identity issued from it.
type testPKI struct {
	ca     *cert.Identity
	server *cert.Identity
	client *cert.Identity
}

func newTestPKI(t *testing.T) *testPKI {
	t.Helper()
	ca, err := cert.NewCA("Test Root CA", cert.KeyTypeECDSAP256)
	if err != nil {
		t.Fatalf("NewCA: %v", err)
	}
	server, err := cert.Issue(ca, cert.Template{
		CommonName: "server",
		DNSNames:   []string{"server.test"},
		Server:     true,
	})
	if err != nil {
		t.Fatalf("Issue server: %v", err)
	}
	client, err := cert.Issue(ca, cert.Template{
		CommonName: "client",
		Client:     true,
	})
	if err != nil {
		t.Fatalf("Issue client: %v", err)
	}
	return &testPKI{ca: ca, server: server, client: client}
}

// newTestContext returns a context limited to mask, presenting id if given.
func newTestContext(t *testing.T, mask protocol.Protocols, id *cert.Identity) *Context {
	t.Helper()
	ctx, err := NewContext(protocol.NegotiateMethod())
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if err := ctx.SetProtocolVersions(mask); err != nil {
		t.Fatalf("SetProtocolVersions: %v", err)
	}
	if id != nil {
		if err := ctx.UseCertificate(id.Certificate); err != nil {
			t.Fatalf("UseCertificate: %v", err)
		}
		if err := ctx.UseCertificateChain(id.Chain); err != nil {
			t.Fatalf("UseCertificateChain: %v", err)
		}
		if err := ctx.UsePrivateKey(id.PrivateKey); err != nil {
			t.Fatalf("UsePrivateKey: %v", err)
		}
	}
	t.Cleanup(ctx.Destroy)
	return ctx
}

// endpoint is a session with the buffers it is attached to.
type endpoint struct {
	s    *Session
	pair bio.Pair
}

func newEndpoint(t *testing.T, ctx *Context, server bool) *endpoint {
	t.Helper()
	return newEndpointWithPair(t, ctx, server, bio.NewPair())
}

func newEndpointWithPair(t *testing.T, ctx *Context, server bool, pair bio.Pair) *endpoint {
	t.Helper()
	s, err := NewSession(ctx)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(s.Destroy)

	if server {
		err = s.SetAcceptState()
	} else {
		err = s.SetConnectState()
	}
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	if err := s.SetBuffers(pair.In, pair.Out); err != nil {
		t.Fatalf("SetBuffers: %v", err)
	}
	return &endpoint{s: s, pair: pair}
}

// drive runs both handshakes, pumping between steps, until each side is
// established or has failed.
func drive(t *testing.T, client, server *endpoint) (Result, Result) {
	t.Helper()
	var rc, rs Result
	for i := 0; i < 64; i++ {
		rc = client.s.DoHandshake()
		rs = server.s.DoHandshake()
		moved := bio.Pump(client.pair, server.pair)

		done := func(r Result) bool { return r.N == 1 || r.Fatal() }
		if done(rc) && done(rs) && moved == 0 {
			return rc, rs
		}
	}
	t.Fatalf("handshake did not settle: client %v, server %v", rc, rs)
	return rc, rs
}

// handshake runs both handshakes and fails the test unless both complete.
func handshake(t *testing.T, client, server *endpoint) {
	t.Helper()
	rc, rs := drive(t, client, server)
	if rc.N != 1 || rs.N != 1 {
		t.Fatalf("handshake failed: client %v, server %v", rc, rs)
	}
}

// readAll reads from e until want bytes arrived, pumping with peer.
func readAll(t *testing.T, e, peer *endpoint, want int) []byte {
	t.Helper()
	var got []byte
	buf := make([]byte, 1000)
	for i := 0; len(got) < want; i++ {
		if i > 10000 {
			t.Fatalf("read stalled after %d of %d bytes", len(got), want)
		}
		r := e.s.Read(buf)
		switch {
		case r.N > 0:
			got = append(got, buf[:r.N]...)
		case r.WouldBlock():
			bio.Pump(e.pair, peer.pair)
		default:
			t.Fatalf("Read() = %v after %d bytes", r, len(got))
		}
	}
	return got
}

// captureLogger records protocol events.
type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(ev log.Event) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *captureLogger) byCategory(cat log.Category) []log.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []log.Event
	for _, ev := range c.events {
		if ev.Category == cat {
			out = append(out, ev)
		}
	}
	return out
}

// stubVerifier is a PeerVerifier backed by testify's mock.
type stubVerifier struct{ mock.Mock }

func (v *stubVerifier) Verify(vc *VerificationContext) bool {
	return v.Called(vc).Bool(0)
}
