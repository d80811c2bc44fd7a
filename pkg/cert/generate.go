package cert

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"math/big"
	"net"
	"time"
)

// Generation errors.
var (
	ErrUnknownKeyType = errors.New("unknown key type")
	ErrNotCA          = errors.New("issuer is not a CA")
)

// Template describes an end-entity certificate to issue.
type Template struct {
	// CommonName is the subject CN.
	CommonName string

	// Organization is the optional subject O.
	Organization string

	// DNSNames and IPs populate the subject alternative name extension.
	DNSNames []string
	IPs      []net.IP

	// Server and Client select the extended key usages. With neither set
	// both are included.
	Server bool
	Client bool

	// Validity overrides LeafValidity when positive.
	Validity time.Duration

	// KeyType selects the subject key algorithm.
	KeyType KeyType
}

// GenerateKey creates a private key of the given type.
func GenerateKey(kt KeyType) (crypto.Signer, error) {
	switch kt {
	case KeyTypeECDSAP256:
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case KeyTypeRSA2048:
		return rsa.GenerateKey(rand.Reader, 2048)
	case KeyTypeEd25519:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		return priv, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKeyType, kt)
	}
}

// ComputeSKI computes the Subject Key Identifier of a public key: the SHA-1
// hash of its PKIX encoding (RFC 5280 method 1, over the full SPKI).
func ComputeSKI(pub crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	sum := sha1.Sum(der)
	return sum[:], nil
}

func serialNumber() (*big.Int, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), 127)
	return rand.Int(rand.Reader, limit)
}

// NewCA generates a self-signed CA certificate and key.
func NewCA(commonName string, kt KeyType) (*Identity, error) {
	key, err := GenerateKey(kt)
	if err != nil {
		return nil, err
	}
	ski, err := ComputeSKI(key.Public())
	if err != nil {
		return nil, err
	}
	serial, err := serialNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             now.Add(-backdate),
		NotAfter:              now.Add(CAValidity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
		SubjectKeyId:          ski,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, key.Public(), key)
	if err != nil {
		return nil, fmt.Errorf("create CA certificate: %w", err)
	}
	c, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	return &Identity{Certificate: c, PrivateKey: key}, nil
}

// Issue creates a new key and a certificate for it signed by ca. The
// returned identity's chain carries ca's own chain, so a peer trusting the
// root can verify it.
func Issue(ca *Identity, t Template) (*Identity, error) {
	if ca == nil || ca.Certificate == nil || ca.PrivateKey == nil {
		return nil, ErrInvalidCert
	}
	if !ca.Certificate.IsCA {
		return nil, ErrNotCA
	}

	key, err := GenerateKey(t.KeyType)
	if err != nil {
		return nil, err
	}
	c, err := sign(ca.Certificate, ca.PrivateKey, key, t)
	if err != nil {
		return nil, err
	}

	chain := make([]*x509.Certificate, 0, 1+len(ca.Chain))
	if ca.Certificate.Subject.String() != ca.Certificate.Issuer.String() {
		chain = append(chain, ca.Certificate)
	}
	chain = append(chain, ca.Chain...)
	return &Identity{Certificate: c, Chain: chain, PrivateKey: key}, nil
}

// SelfSigned creates a self-signed end-entity identity.
func SelfSigned(t Template) (*Identity, error) {
	key, err := GenerateKey(t.KeyType)
	if err != nil {
		return nil, err
	}
	c, err := sign(nil, key, key, t)
	if err != nil {
		return nil, err
	}
	return &Identity{Certificate: c, PrivateKey: key}, nil
}

// sign issues a certificate for subject's public key. A nil parent makes it
// self-signed.
func sign(parent *x509.Certificate, signer, subject crypto.Signer, t Template) (*x509.Certificate, error) {
	ski, err := ComputeSKI(subject.Public())
	if err != nil {
		return nil, err
	}
	serial, err := serialNumber()
	if err != nil {
		return nil, err
	}

	validity := t.Validity
	if validity <= 0 {
		validity = LeafValidity
	}

	usage := x509.KeyUsageDigitalSignature
	if _, ok := subject.(*rsa.PrivateKey); ok {
		usage |= x509.KeyUsageKeyEncipherment
	}

	var ext []x509.ExtKeyUsage
	if t.Server || !t.Client {
		ext = append(ext, x509.ExtKeyUsageServerAuth)
	}
	if t.Client || !t.Server {
		ext = append(ext, x509.ExtKeyUsageClientAuth)
	}

	subj := pkix.Name{CommonName: t.CommonName}
	if t.Organization != "" {
		subj.Organization = []string{t.Organization}
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               subj,
		NotBefore:             now.Add(-backdate),
		NotAfter:              now.Add(validity),
		KeyUsage:              usage,
		ExtKeyUsage:           ext,
		BasicConstraintsValid: true,
		SubjectKeyId:          ski,
		DNSNames:              t.DNSNames,
		IPAddresses:           t.IPs,
	}
	if parent == nil {
		parent = tmpl
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, subject.Public(), signer)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	return x509.ParseCertificate(der)
}
