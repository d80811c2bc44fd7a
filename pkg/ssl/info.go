package ssl

import (
	"crypto/tls"
	"strings"

	"github.com/mash-protocol/mash-tls/pkg/protocol"
)

// CipherAlgorithmType identifies the bulk cipher of a suite. The values
// below RC4 match System.Security.Authentication.CipherAlgorithmType; the
// rest are provider extensions kept for compatibility.
type CipherAlgorithmType int32

const (
	CipherNone          CipherAlgorithmType = 0
	CipherNull          CipherAlgorithmType = 24576
	CipherDes           CipherAlgorithmType = 26113
	CipherRc2           CipherAlgorithmType = 26114
	CipherTripleDes     CipherAlgorithmType = 26115
	CipherAes128        CipherAlgorithmType = 26126
	CipherAes192        CipherAlgorithmType = 26127
	CipherAes256        CipherAlgorithmType = 26128
	CipherAes           CipherAlgorithmType = 26129
	CipherRc4           CipherAlgorithmType = 26625
	CipherIDEA          CipherAlgorithmType = 229380
	CipherCamellia128   CipherAlgorithmType = 229381
	CipherCamellia256   CipherAlgorithmType = 229382
	CipherGOST28147CNT  CipherAlgorithmType = 229383
	CipherSEED          CipherAlgorithmType = 229384
	CipherChaCha20      CipherAlgorithmType = 229385
)

// String returns the algorithm name.
func (c CipherAlgorithmType) String() string {
	switch c {
	case CipherNone:
		return "None"
	case CipherNull:
		return "Null"
	case CipherDes:
		return "Des"
	case CipherRc2:
		return "Rc2"
	case CipherTripleDes:
		return "TripleDes"
	case CipherAes128:
		return "Aes128"
	case CipherAes192:
		return "Aes192"
	case CipherAes256:
		return "Aes256"
	case CipherAes:
		return "Aes"
	case CipherRc4:
		return "Rc4"
	case CipherIDEA:
		return "IDEA"
	case CipherCamellia128:
		return "CAMELLIA128"
	case CipherCamellia256:
		return "CAMELLIA256"
	case CipherGOST28147CNT:
		return "GOST2814789CNT"
	case CipherSEED:
		return "SEED"
	case CipherChaCha20:
		return "CHACHA20"
	default:
		return "Unknown"
	}
}

// ExchangeAlgorithmType identifies the key exchange of a suite.
type ExchangeAlgorithmType int32

const (
	ExchangeNone          ExchangeAlgorithmType = 0
	ExchangeRsaSign       ExchangeAlgorithmType = 9216
	ExchangeRsaKeyX       ExchangeAlgorithmType = 41984
	ExchangeDiffieHellman ExchangeAlgorithmType = 43522
	ExchangeECDH          ExchangeAlgorithmType = 43525
	ExchangeECDSA         ExchangeAlgorithmType = 41475
	ExchangePSK           ExchangeAlgorithmType = 229390
	ExchangeGOST          ExchangeAlgorithmType = 229391
	ExchangeSRP           ExchangeAlgorithmType = 229392
	ExchangeKRB5          ExchangeAlgorithmType = 229393
)

// String returns the algorithm name.
func (e ExchangeAlgorithmType) String() string {
	switch e {
	case ExchangeNone:
		return "None"
	case ExchangeRsaSign:
		return "RsaSign"
	case ExchangeRsaKeyX:
		return "RsaKeyX"
	case ExchangeDiffieHellman:
		return "DiffieHellman"
	case ExchangeECDH:
		return "ECDH"
	case ExchangeECDSA:
		return "ECDSA"
	case ExchangePSK:
		return "PSK"
	case ExchangeGOST:
		return "GOST"
	case ExchangeSRP:
		return "SRP"
	case ExchangeKRB5:
		return "KRB5"
	default:
		return "Unknown"
	}
}

// HashAlgorithmType identifies the record MAC of a suite. AEAD suites have
// no separate MAC and report HashAEAD.
type HashAlgorithmType int32

const (
	HashNone   HashAlgorithmType = 0
	HashMd5    HashAlgorithmType = 32771
	HashSha1   HashAlgorithmType = 32772
	HashSha256 HashAlgorithmType = 32780
	HashSha384 HashAlgorithmType = 32781
	HashGOST94 HashAlgorithmType = 229410
	HashGOST89 HashAlgorithmType = 229411
	HashAEAD   HashAlgorithmType = 229412
)

// String returns the algorithm name.
func (h HashAlgorithmType) String() string {
	switch h {
	case HashNone:
		return "None"
	case HashMd5:
		return "Md5"
	case HashSha1:
		return "Sha1"
	case HashSha256:
		return "SHA256"
	case HashSha384:
		return "SHA384"
	case HashGOST94:
		return "GOST94"
	case HashGOST89:
		return "GOST89"
	case HashAEAD:
		return "AEAD"
	default:
		return "Unknown"
	}
}

// ConnectionInfo describes the parameters a session negotiated.
type ConnectionInfo struct {
	Protocol        protocol.Protocols
	Version         string
	CipherSuite     uint16
	CipherSuiteName string
	Cipher          CipherAlgorithmType
	KeySize         int
	Exchange        ExchangeAlgorithmType
	Hash            HashAlgorithmType
	ServerName      string
	DidResume       bool
}

func newConnectionInfo(cs tls.ConnectionState) ConnectionInfo {
	info := ConnectionInfo{
		Version:         protocol.Label(cs.Version),
		CipherSuite:     cs.CipherSuite,
		CipherSuiteName: tls.CipherSuiteName(cs.CipherSuite),
		ServerName:      cs.ServerName,
		DidResume:       cs.DidResume,
	}
	if p, ok := protocol.ByWire(cs.Version); ok {
		info.Protocol = p.Mask
	}
	info.Cipher, info.KeySize, info.Exchange, info.Hash = decomposeSuite(info.CipherSuiteName, cs.Version)
	return info
}

// decomposeSuite splits an IANA suite name into its algorithm families.
// Unrecognised names decompose to the None values.
func decomposeSuite(name string, version uint16) (CipherAlgorithmType, int, ExchangeAlgorithmType, HashAlgorithmType) {
	rest, ok := strings.CutPrefix(name, "TLS_")
	if !ok {
		return CipherNone, 0, ExchangeNone, HashNone
	}

	kx, bulk, found := strings.Cut(rest, "_WITH_")
	if !found {
		// TLS 1.3 suites name only the AEAD and the HKDF hash; the key
		// exchange is always (EC)DHE.
		bulk = rest
	}

	cipher, bits := bulkCipher(bulk)
	exchange := ExchangeECDH
	if found {
		exchange = keyExchange(kx)
	}

	hash := HashNone
	switch {
	case version >= tls.VersionTLS13, isAEAD(bulk):
		hash = HashAEAD
	case strings.HasSuffix(bulk, "_SHA384"):
		hash = HashSha384
	case strings.HasSuffix(bulk, "_SHA256"):
		hash = HashSha256
	case strings.HasSuffix(bulk, "_SHA"):
		hash = HashSha1
	case strings.HasSuffix(bulk, "_MD5"):
		hash = HashMd5
	case strings.HasSuffix(bulk, "_GOST89"):
		hash = HashGOST89
	case strings.HasSuffix(bulk, "_GOSTR3411"):
		hash = HashGOST94
	}
	return cipher, bits, exchange, hash
}

func keyExchange(kx string) ExchangeAlgorithmType {
	switch {
	case strings.Contains(kx, "PSK"):
		return ExchangePSK
	case strings.Contains(kx, "SRP"):
		return ExchangeSRP
	case strings.Contains(kx, "KRB5"):
		return ExchangeKRB5
	case strings.Contains(kx, "GOST"):
		return ExchangeGOST
	case strings.HasPrefix(kx, "ECDH"):
		return ExchangeECDH
	case strings.HasPrefix(kx, "DH"):
		return ExchangeDiffieHellman
	case kx == "RSA" || strings.HasPrefix(kx, "RSA_"):
		return ExchangeRsaKeyX
	default:
		return ExchangeNone
	}
}

func bulkCipher(bulk string) (CipherAlgorithmType, int) {
	switch {
	case strings.HasPrefix(bulk, "AES_128"):
		return CipherAes128, 128
	case strings.HasPrefix(bulk, "AES_192"):
		return CipherAes192, 192
	case strings.HasPrefix(bulk, "AES_256"):
		return CipherAes256, 256
	case strings.HasPrefix(bulk, "3DES"):
		return CipherTripleDes, 168
	case strings.HasPrefix(bulk, "DES40"):
		return CipherDes, 40
	case strings.HasPrefix(bulk, "DES"):
		return CipherDes, 56
	case strings.HasPrefix(bulk, "RC4_40"):
		return CipherRc4, 40
	case strings.HasPrefix(bulk, "RC4"):
		return CipherRc4, 128
	case strings.HasPrefix(bulk, "RC2_CBC_40"):
		return CipherRc2, 40
	case strings.HasPrefix(bulk, "RC2"):
		return CipherRc2, 128
	case strings.HasPrefix(bulk, "CHACHA20"):
		return CipherChaCha20, 256
	case strings.HasPrefix(bulk, "CAMELLIA_128"):
		return CipherCamellia128, 128
	case strings.HasPrefix(bulk, "CAMELLIA_256"):
		return CipherCamellia256, 256
	case strings.HasPrefix(bulk, "SEED"):
		return CipherSEED, 128
	case strings.HasPrefix(bulk, "IDEA"):
		return CipherIDEA, 128
	case strings.HasPrefix(bulk, "GOST28147"):
		return CipherGOST28147CNT, 256
	case strings.HasPrefix(bulk, "NULL"):
		return CipherNull, 0
	default:
		return CipherNone, 0
	}
}

func isAEAD(bulk string) bool {
	return strings.Contains(bulk, "_GCM_") ||
		strings.Contains(bulk, "_CCM") ||
		strings.Contains(bulk, "POLY1305")
}

// StreamSizes is the worst-case record framing overhead around plaintext.
type StreamSizes struct {
	// Header precedes the payload: the 5-byte record header plus a 16-byte
	// explicit IV or nonce.
	Header int

	// Trailer follows the payload: a 48-byte MAC or tag plus up to 256
	// bytes of block padding.
	Trailer int

	// MaxMessage is the largest plaintext a single record carries.
	MaxMessage int
}

const (
	recordHeaderLen  = 5
	maxExplicitIVLen = 16
	maxMACLen        = 48
	maxPaddingLen    = 256
	maxPlaintext     = 16384
)

// GetStreamSizes returns the framing overhead a caller must reserve when
// sizing buffers for record encapsulation. It does not depend on a session.
func GetStreamSizes() StreamSizes {
	return StreamSizes{
		Header:     recordHeaderLen + maxExplicitIVLen,
		Trailer:    maxMACLen + maxPaddingLen,
		MaxMessage: maxPlaintext,
	}
}
