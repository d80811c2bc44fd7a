package cert

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"testing"
	"time"
)

// signIntermediate issues a CA certificate for key signed by root.
func signIntermediate(root *Identity, key crypto.Signer) (*x509.Certificate, error) {
	ski, err := ComputeSKI(key.Public())
	if err != nil {
		return nil, err
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(2),
		Subject:               pkix.Name{CommonName: "intermediate"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
		SubjectKeyId:          ski,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, root.Certificate, key.Public(), root.PrivateKey)
	if err != nil {
		return nil, err
	}
	return x509.ParseCertificate(der)
}

func TestKeyMatchesCertificate(t *testing.T) {
	a, _ := SelfSigned(Template{CommonName: "a"})
	b, _ := SelfSigned(Template{CommonName: "b"})
	r, _ := SelfSigned(Template{CommonName: "r", KeyType: KeyTypeRSA2048})

	tests := []struct {
		name string
		cert *x509.Certificate
		key  any
		want error
	}{
		{"matching ecdsa", a.Certificate, a.PrivateKey, nil},
		{"matching rsa", r.Certificate, r.PrivateKey, nil},
		{"mismatched", a.Certificate, b.PrivateKey, ErrKeyMismatch},
		{"mismatched algorithm", a.Certificate, r.PrivateKey, ErrKeyMismatch},
		{"nil cert", nil, a.PrivateKey, ErrInvalidCert},
		{"nil key", a.Certificate, nil, ErrInvalidKey},
		{"not a key", a.Certificate, "secret", ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := KeyMatchesCertificate(tt.cert, tt.key)
			if tt.want == nil {
				if err != nil {
					t.Errorf("KeyMatchesCertificate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("KeyMatchesCertificate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVerifyChain(t *testing.T) {
	root, _ := NewCA("verify-root", KeyTypeECDSAP256)
	other, _ := NewCA("other-root", KeyTypeECDSAP256)
	leaf, _ := Issue(root, Template{CommonName: "srv", DNSNames: []string{"srv.test"}, Server: true})

	t.Run("ValidChain", func(t *testing.T) {
		chains, err := VerifyChain(leaf.Certificate, nil, VerifyOptions{Roots: root.Pool(), DNSName: "srv.test", Usage: x509.ExtKeyUsageServerAuth})
		if err != nil {
			t.Fatalf("VerifyChain() error = %v", err)
		}
		if len(chains) == 0 || len(chains[0]) != 2 {
			t.Errorf("chains = %v, want one leaf+root chain", chains)
		}
	})

	t.Run("WrongRoot", func(t *testing.T) {
		_, err := VerifyChain(leaf.Certificate, nil, VerifyOptions{Roots: other.Pool()})
		if !errors.Is(err, ErrInvalidChain) {
			t.Errorf("VerifyChain() error = %v, want ErrInvalidChain", err)
		}
	})

	t.Run("WrongName", func(t *testing.T) {
		_, err := VerifyChain(leaf.Certificate, nil, VerifyOptions{Roots: root.Pool(), DNSName: "evil.test"})
		if !errors.Is(err, ErrInvalidChain) {
			t.Errorf("VerifyChain() error = %v, want ErrInvalidChain", err)
		}
	})

	t.Run("WrongUsage", func(t *testing.T) {
		_, err := VerifyChain(leaf.Certificate, nil, VerifyOptions{Roots: root.Pool(), Usage: x509.ExtKeyUsageClientAuth})
		if !errors.Is(err, ErrInvalidChain) {
			t.Errorf("VerifyChain() error = %v, want ErrInvalidChain", err)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		_, err := VerifyChain(leaf.Certificate, nil, VerifyOptions{Roots: root.Pool(), Now: leaf.Certificate.NotAfter.Add(time.Hour)})
		if !errors.Is(err, ErrCertExpired) {
			t.Errorf("VerifyChain() error = %v, want ErrCertExpired", err)
		}
	})

	t.Run("NotYetValid", func(t *testing.T) {
		_, err := VerifyChain(leaf.Certificate, nil, VerifyOptions{Roots: root.Pool(), Now: leaf.Certificate.NotBefore.Add(-time.Hour)})
		if !errors.Is(err, ErrCertNotYetValid) {
			t.Errorf("VerifyChain() error = %v, want ErrCertNotYetValid", err)
		}
	})

	t.Run("NilLeaf", func(t *testing.T) {
		if _, err := VerifyChain(nil, nil, VerifyOptions{}); !errors.Is(err, ErrInvalidCert) {
			t.Errorf("VerifyChain(nil) error = %v, want ErrInvalidCert", err)
		}
	})
}

func TestGetCertificateInfo(t *testing.T) {
	if GetCertificateInfo(nil) != nil {
		t.Error("GetCertificateInfo(nil) should be nil")
	}

	root, _ := NewCA("info-root", KeyTypeECDSAP256)
	leaf, _ := Issue(root, Template{CommonName: "info", DNSNames: []string{"info.test"}})
	info := GetCertificateInfo(leaf.Certificate)
	if info.Subject != "CN=info" {
		t.Errorf("Subject = %q, want CN=info", info.Subject)
	}
	if info.Issuer != "CN=info-root" {
		t.Errorf("Issuer = %q, want CN=info-root", info.Issuer)
	}
	if info.IsCA {
		t.Error("leaf should not be a CA")
	}
	if len(info.DNSNames) != 1 || info.DNSNames[0] != "info.test" {
		t.Errorf("DNSNames = %v", info.DNSNames)
	}
}
