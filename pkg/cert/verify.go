package cert

import (
	"crypto"
	"crypto/x509"
	"errors"
	"fmt"
	"time"
)

// Verification errors.
var (
	ErrInvalidCert     = errors.New("invalid certificate")
	ErrCertExpired     = errors.New("certificate has expired")
	ErrCertNotYetValid = errors.New("certificate is not yet valid")
	ErrInvalidChain    = errors.New("invalid certificate chain")
	ErrKeyMismatch     = errors.New("private key does not match certificate")
)

type publicKeyEqualer interface {
	Equal(crypto.PublicKey) bool
}

// KeyMatchesCertificate reports whether key is the private half of the
// certificate's public key.
func KeyMatchesCertificate(cert *x509.Certificate, key crypto.PrivateKey) error {
	if cert == nil {
		return ErrInvalidCert
	}
	if key == nil {
		return ErrInvalidKey
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupported, key)
	}
	pub := signer.Public()

	eq, ok := pub.(publicKeyEqualer)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupported, pub)
	}
	if !eq.Equal(cert.PublicKey) {
		return ErrKeyMismatch
	}
	return nil
}

// VerifyOptions control chain verification.
type VerifyOptions struct {
	// Roots are the trust anchors. Nil uses the system pool.
	Roots *x509.CertPool

	// DNSName, when set, must match the leaf.
	DNSName string

	// Usage is the extended key usage the leaf must allow.
	Usage x509.ExtKeyUsage

	// Now overrides the current time.
	Now time.Time
}

// VerifyChain verifies leaf against the trust roots using intermediates to
// build the path. It returns the verified chains.
func VerifyChain(leaf *x509.Certificate, intermediates []*x509.Certificate, opts VerifyOptions) ([][]*x509.Certificate, error) {
	if leaf == nil {
		return nil, ErrInvalidCert
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	if now.Before(leaf.NotBefore) {
		return nil, ErrCertNotYetValid
	}
	if now.After(leaf.NotAfter) {
		return nil, ErrCertExpired
	}

	inter := x509.NewCertPool()
	for _, c := range intermediates {
		inter.AddCert(c)
	}

	usage := opts.Usage
	if usage == 0 {
		usage = x509.ExtKeyUsageAny
	}

	chains, err := leaf.Verify(x509.VerifyOptions{
		Roots:         opts.Roots,
		Intermediates: inter,
		DNSName:       opts.DNSName,
		CurrentTime:   now,
		KeyUsages:     []x509.ExtKeyUsage{usage},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChain, err)
	}
	return chains, nil
}

// CertificateInfo extracts human-readable information from a certificate.
type CertificateInfo struct {
	Subject   string
	Issuer    string
	DNSNames  []string
	NotBefore time.Time
	NotAfter  time.Time
	IsCA      bool
	SKI       []byte
	AKI       []byte
}

// GetCertificateInfo extracts information from a certificate.
func GetCertificateInfo(cert *x509.Certificate) *CertificateInfo {
	if cert == nil {
		return nil
	}

	return &CertificateInfo{
		Subject:   cert.Subject.String(),
		Issuer:    cert.Issuer.String(),
		DNSNames:  cert.DNSNames,
		NotBefore: cert.NotBefore,
		NotAfter:  cert.NotAfter,
		IsCA:      cert.IsCA,
		SKI:       cert.SubjectKeyId,
		AKI:       cert.AuthorityKeyId,
	}
}
