package ssl

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// parseDistinguishedNames decodes the DER names a server advertised in its
// CertificateRequest. Malformed entries are skipped.
func parseDistinguishedNames(ders [][]byte) []pkix.Name {
	names := make([]pkix.Name, 0, len(ders))
	for _, der := range ders {
		// Each entry must be exactly one SEQUENCE.
		s := cryptobyte.String(der)
		var seq cryptobyte.String
		if !s.ReadASN1(&seq, cbasn1.SEQUENCE) || !s.Empty() {
			continue
		}

		var rdn pkix.RDNSequence
		if rest, err := asn1.Unmarshal(der, &rdn); err != nil || len(rest) != 0 {
			continue
		}
		var name pkix.Name
		name.FillFromRDNSequence(&rdn)
		names = append(names, name)
	}
	return names
}

func subjectNames(certs []*x509.Certificate) []pkix.Name {
	names := make([]pkix.Name, 0, len(certs))
	for _, c := range certs {
		names = append(names, c.Subject)
	}
	return names
}

func certPool(certs []*x509.Certificate) *x509.CertPool {
	if len(certs) == 0 {
		return nil
	}
	pool := x509.NewCertPool()
	for _, c := range certs {
		pool.AddCert(c)
	}
	return pool
}
