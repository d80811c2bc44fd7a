package ssl

import "crypto/x509"

// VerificationContext is handed to a PeerVerifier while the handshake is
// suspended on the peer's certificate. Certificates are borrowed: they stay
// valid while the session lives and must not be mutated.
type VerificationContext struct {
	// Certificate is the peer's leaf certificate.
	Certificate *x509.Certificate

	// Chain is the certificate list as the peer sent it, leaf first.
	Chain []*x509.Certificate

	// ServerName is the SNI name of the session (client side) or the name
	// the client asked for (server side).
	ServerName string

	// IsServer is set when the verifying session accepted the connection,
	// so Certificate is a client certificate.
	IsServer bool

	// PreverifyOK is the verdict of chain verification against the
	// context's trust store. It is false for certificate verifiers, which
	// replace that step.
	PreverifyOK bool

	// Err explains a failed pre-verification.
	Err error

	// Roots is the context's trust store, nil for the system pool.
	Roots *x509.CertPool
}

// PeerVerifier decides whether a peer's certificate is acceptable.
type PeerVerifier interface {
	Verify(vc *VerificationContext) bool
}

// VerifierFunc adapts a function to PeerVerifier.
type VerifierFunc func(vc *VerificationContext) bool

// Verify calls f(vc).
func (f VerifierFunc) Verify(vc *VerificationContext) bool { return f(vc) }

// AcceptPreverified accepts exactly the certificates that passed chain
// verification.
var AcceptPreverified PeerVerifier = VerifierFunc(func(vc *VerificationContext) bool {
	return vc.PreverifyOK
})

// Compile-time interface satisfaction check.
var _ PeerVerifier = VerifierFunc(nil)
