package ssl

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mash-protocol/mash-tls/pkg/cert"
	"github.com/mash-protocol/mash-tls/pkg/log"
	"github.com/mash-protocol/mash-tls/pkg/metrics"
	"github.com/mash-protocol/mash-tls/pkg/protocol"
)

// EncryptionPolicy controls which cipher suites a context offers.
type EncryptionPolicy int

const (
	// RequireEncryption offers the provider's default suites.
	RequireEncryption EncryptionPolicy = 0
	// AllowNoEncryption also offers the provider's legacy and weak suites.
	AllowNoEncryption EncryptionPolicy = 1
	// NoEncryption also permits null-cipher suites where the provider has
	// any. crypto/tls implements none, so it offers what AllowNoEncryption
	// offers.
	NoEncryption EncryptionPolicy = 2
)

// String returns the policy name.
func (p EncryptionPolicy) String() string {
	switch p {
	case RequireEncryption:
		return "RequireEncryption"
	case AllowNoEncryption:
		return "AllowNoEncryption"
	case NoEncryption:
		return "NoEncryption"
	default:
		return "Unknown"
	}
}

// Context is the configuration sessions are created from. Setters must
// complete before the first NewSession; each session snapshots the
// configuration when it is created.
type Context struct {
	mu sync.RWMutex

	method        *protocol.Method
	protocols     protocol.Protocols
	policy        EncryptionPolicy
	cert          *x509.Certificate
	chain         []*x509.Certificate
	key           crypto.Signer
	quietShutdown bool
	clientCAs     []*x509.Certificate
	verifier      PeerVerifier
	certVerifier  PeerVerifier
	roots         *x509.CertPool
	renegotiation tls.RenegotiationSupport

	logger         *slog.Logger
	protocolLogger log.Logger
	metrics        *metrics.Collector

	live      atomic.Int32
	destroyed bool
}

// NewContext creates a context for method. All of the method's versions are
// enabled until SetProtocolVersions narrows them.
func NewContext(method *protocol.Method) (*Context, error) {
	if method == nil {
		return nil, ErrNullContext
	}
	if err := protocol.EnsureInitialized(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNullContext, err)
	}
	return &Context{
		method:        method,
		protocols:     method.Versions(),
		renegotiation: tls.RenegotiateFreelyAsClient,
	}, nil
}

// update runs fn under the write lock unless the context was destroyed.
func (c *Context) update(fn func()) error {
	if c == nil {
		return ErrNullContext
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return ErrContextDestroyed
	}
	fn()
	return nil
}

// Method returns the method the context was created with.
func (c *Context) Method() *protocol.Method {
	if c == nil {
		return nil
	}
	return c.method
}

// SetProtocolVersions enables exactly the versions in mask. Versions outside
// the context's method stay disabled.
func (c *Context) SetProtocolVersions(mask protocol.Protocols) error {
	return c.update(func() {
		c.protocols = mask
	})
}

// Protocols returns the enabled protocol versions.
func (c *Context) Protocols() protocol.Protocols {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.protocols & c.method.Versions()
}

// SetEncryptionPolicy selects the cipher suites sessions offer.
func (c *Context) SetEncryptionPolicy(policy EncryptionPolicy) error {
	return c.update(func() {
		c.policy = policy
	})
}

// UseCertificate sets the certificate the context presents.
func (c *Context) UseCertificate(leaf *x509.Certificate) error {
	if leaf == nil {
		return ErrNoCertificate
	}
	return c.update(func() {
		c.cert = leaf
	})
}

// UseCertificateChain sets the intermediates sent after the certificate,
// leaf issuer first.
func (c *Context) UseCertificateChain(chain []*x509.Certificate) error {
	return c.update(func() {
		c.chain = append([]*x509.Certificate(nil), chain...)
	})
}

// UsePrivateKey sets the private key for the certificate.
func (c *Context) UsePrivateKey(key crypto.PrivateKey) error {
	signer, ok := key.(crypto.Signer)
	if !ok || signer == nil {
		return fmt.Errorf("%w: %T", ErrUnsupportedKey, key)
	}
	return c.update(func() {
		c.key = signer
	})
}

// CheckPrivateKey verifies the private key belongs to the certificate.
func (c *Context) CheckPrivateKey() error {
	if c == nil {
		return ErrNullContext
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.destroyed {
		return ErrContextDestroyed
	}
	if c.cert == nil {
		return ErrNoCertificate
	}
	if c.key == nil {
		return ErrNoPrivateKey
	}
	if err := cert.KeyMatchesCertificate(c.cert, c.key); err != nil {
		return fmt.Errorf("%w: %v", ErrKeyMismatch, err)
	}
	return nil
}

// SetQuietShutdown makes Shutdown complete without exchanging close_notify.
func (c *Context) SetQuietShutdown() error {
	return c.update(func() {
		c.quietShutdown = true
	})
}

// SetClientCAList sets the CA names a server advertises when it asks for a
// client certificate.
func (c *Context) SetClientCAList(cas []*x509.Certificate) error {
	return c.update(func() {
		c.clientCAs = append([]*x509.Certificate(nil), cas...)
	})
}

// SetVerifier installs a hook that sees every peer certificate together with
// the result of verifying it against the trust store. Servers with a
// verifier request client certificates.
func (c *Context) SetVerifier(v PeerVerifier) error {
	return c.update(func() {
		c.verifier = v
	})
}

// SetCertVerifier installs a hook that replaces chain verification. When
// set, the trust store is not consulted and the verifier installed with
// SetVerifier is not called.
func (c *Context) SetCertVerifier(v PeerVerifier) error {
	return c.update(func() {
		c.certVerifier = v
	})
}

// SetTrustStore sets the roots peer certificates are pre-verified against.
// Nil selects the system pool.
func (c *Context) SetTrustStore(roots *x509.CertPool) error {
	return c.update(func() {
		c.roots = roots
	})
}

// SetRenegotiation sets how client sessions answer a server's request to
// renegotiate.
func (c *Context) SetRenegotiation(r tls.RenegotiationSupport) error {
	return c.update(func() {
		c.renegotiation = r
	})
}

// SetLogger sets the operational logger handed to sessions.
func (c *Context) SetLogger(logger *slog.Logger) error {
	return c.update(func() {
		c.logger = logger
	})
}

// SetProtocolLogger sets the protocol event logger handed to sessions.
func (c *Context) SetProtocolLogger(logger log.Logger) error {
	return c.update(func() {
		c.protocolLogger = logger
	})
}

// SetMetrics sets the collector sessions report to.
func (c *Context) SetMetrics(m *metrics.Collector) error {
	return c.update(func() {
		c.metrics = m
	})
}

// LiveSessions returns the number of sessions created and not destroyed.
func (c *Context) LiveSessions() int {
	if c == nil {
		return 0
	}
	return int(c.live.Load())
}

// Destroy invalidates the context. It is safe on nil and on an already
// destroyed context. Sessions must be destroyed first.
func (c *Context) Destroy() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.destroyed = true
	if n := c.live.Load(); n > 0 && c.logger != nil {
		c.logger.Warn("context destroyed with live sessions", "sessions", n)
	}
	c.cert, c.chain, c.key = nil, nil, nil
	c.verifier, c.certVerifier = nil, nil
}

// sessionConfig is the part of a context a session keeps.
type sessionConfig struct {
	tls           *tls.Config
	quietShutdown bool
	verifier      PeerVerifier
	certVerifier  PeerVerifier
	roots         *x509.CertPool
	clientCert    *tls.Certificate
	clientCANames []pkix.Name

	logger         *slog.Logger
	protocolLogger log.Logger
	metrics        *metrics.Collector
}

// snapshot builds the tls.Config and hooks for a new session.
func (c *Context) snapshot() (*sessionConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.destroyed {
		return nil, ErrContextDestroyed
	}

	lo, hi, ok := (c.protocols & c.method.Versions()).Range()
	if !ok {
		return nil, fmt.Errorf("%w: %v enabled for method %s", ErrNoUsableProtocol, c.protocols, c.method)
	}

	cfg := &tls.Config{
		MinVersion:             lo,
		MaxVersion:             hi,
		CipherSuites:           cipherSuites(c.policy),
		InsecureSkipVerify:     true,
		SessionTicketsDisabled: true,
		Renegotiation:          c.renegotiation,
		ClientCAs:              certPool(c.clientCAs),
	}
	if c.verifier != nil || c.certVerifier != nil {
		cfg.ClientAuth = tls.RequestClientCert
	}

	sc := &sessionConfig{
		tls:            cfg,
		quietShutdown:  c.quietShutdown,
		verifier:       c.verifier,
		certVerifier:   c.certVerifier,
		roots:          c.roots,
		clientCANames:  subjectNames(c.clientCAs),
		logger:         c.logger,
		protocolLogger: c.protocolLogger,
		metrics:        c.metrics,
	}
	if c.cert != nil && c.key != nil {
		id := cert.Identity{Certificate: c.cert, Chain: c.chain, PrivateKey: c.key}
		tc := id.TLSCertificate()
		cfg.Certificates = []tls.Certificate{tc}
		sc.clientCert = &tc
	}
	return sc, nil
}

// cipherSuites returns the suite list for a policy, nil for the provider
// defaults.
func cipherSuites(policy EncryptionPolicy) []uint16 {
	if policy == RequireEncryption {
		return nil
	}
	var ids []uint16
	for _, s := range tls.CipherSuites() {
		ids = append(ids, s.ID)
	}
	for _, s := range tls.InsecureCipherSuites() {
		ids = append(ids, s.ID)
	}
	return ids
}
