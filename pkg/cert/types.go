package cert

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"time"
)

// Certificate validity periods used by the generators.
const (
	// CAValidity is the validity period for generated CA certificates.
	CAValidity = 10 * 365 * 24 * time.Hour

	// LeafValidity is the validity period for generated end-entity certificates.
	LeafValidity = 365 * 24 * time.Hour

	// backdate keeps freshly issued certificates valid despite small clock skew.
	backdate = 5 * time.Minute
)

// KeyType selects the key algorithm for generated credentials.
type KeyType uint8

const (
	KeyTypeECDSAP256 KeyType = iota
	KeyTypeRSA2048
	KeyTypeEd25519
)

// String returns the key type name.
func (kt KeyType) String() string {
	switch kt {
	case KeyTypeECDSAP256:
		return "ECDSA-P256"
	case KeyTypeRSA2048:
		return "RSA-2048"
	case KeyTypeEd25519:
		return "ED25519"
	default:
		return "UNKNOWN"
	}
}

// Identity is a certificate with its private key and the intermediates a
// peer needs to build a path to a trusted root.
type Identity struct {
	// Certificate is the end-entity (or CA) certificate.
	Certificate *x509.Certificate

	// Chain holds intermediate certificates, leaf issuer first.
	Chain []*x509.Certificate

	// PrivateKey matches Certificate's public key.
	PrivateKey crypto.Signer
}

// TLSCertificate converts the identity to a tls.Certificate.
func (id *Identity) TLSCertificate() tls.Certificate {
	if id == nil || id.Certificate == nil || id.PrivateKey == nil {
		return tls.Certificate{}
	}
	raw := make([][]byte, 0, 1+len(id.Chain))
	raw = append(raw, id.Certificate.Raw)
	for _, c := range id.Chain {
		raw = append(raw, c.Raw)
	}
	return tls.Certificate{
		Certificate: raw,
		PrivateKey:  id.PrivateKey,
		Leaf:        id.Certificate,
	}
}

// Pool returns a pool holding only the identity's certificate, suitable as
// a trust root when the identity is a CA.
func (id *Identity) Pool() *x509.CertPool {
	if id == nil || id.Certificate == nil {
		return nil
	}
	pool := x509.NewCertPool()
	pool.AddCert(id.Certificate)
	return pool
}
