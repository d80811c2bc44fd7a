// Package config loads TLS context settings from YAML or TOML files and
// builds ssl.Context values from them.
package config

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mash-protocol/mash-tls/pkg/cert"
	"github.com/mash-protocol/mash-tls/pkg/protocol"
	"github.com/mash-protocol/mash-tls/pkg/ssl"
)

// Configuration errors.
var (
	ErrUnknownFormat = errors.New("config: unknown file format")
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// DefaultMethod is used when a configuration names no method.
const DefaultMethod = "SSLv23"

// ContextConfig describes one ssl.Context. File paths are resolved relative
// to the working directory, or to the configuration file when loaded with
// Load.
type ContextConfig struct {
	// Method names a protocol method ("SSLv23", "TLSv1_2", ...).
	Method string `yaml:"method" toml:"method"`

	// Protocols restricts the enabled versions ("TLSv1.2", "tls13", ...).
	// Empty keeps every version of the method.
	Protocols []string `yaml:"protocols" toml:"protocols"`

	// Encryption is "require" (default), "allow" or "none".
	Encryption string `yaml:"encryption" toml:"encryption"`

	// Certificate is a PEM file with the leaf certificate, optionally
	// followed by intermediates.
	Certificate string `yaml:"certificate" toml:"certificate"`

	// Key is a PEM file with the certificate's private key.
	Key string `yaml:"key" toml:"key"`

	// Chain is an optional PEM file with additional intermediates.
	Chain string `yaml:"chain" toml:"chain"`

	// ClientCAs are PEM files with the CA names a server advertises.
	ClientCAs []string `yaml:"client_cas" toml:"client_cas"`

	// TrustRoots are PEM files with the roots peers are verified against.
	// Empty selects the system pool.
	TrustRoots []string `yaml:"trust_roots" toml:"trust_roots"`

	// VerifyPeer rejects peers whose certificate does not verify against
	// TrustRoots. Servers with VerifyPeer request client certificates.
	VerifyPeer bool `yaml:"verify_peer" toml:"verify_peer"`

	// QuietShutdown ends sessions without exchanging close_notify.
	QuietShutdown bool `yaml:"quiet_shutdown" toml:"quiet_shutdown"`

	// Renegotiation is "never", "once" or "freely" (default).
	Renegotiation string `yaml:"renegotiation" toml:"renegotiation"`
}

// Load reads a configuration file. The format follows the extension:
// .yaml or .yml for YAML, .toml for TOML.
func Load(path string) (*ContextConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes data in the format named by ext (".yaml", ".yml", ".toml").
func Parse(data []byte, ext string) (*ContextConfig, error) {
	var cfg ContextConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case ".toml":
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolve makes relative file paths relative to dir.
func (c *ContextConfig) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.Certificate = abs(c.Certificate)
	c.Key = abs(c.Key)
	c.Chain = abs(c.Chain)
	for i := range c.ClientCAs {
		c.ClientCAs[i] = abs(c.ClientCAs[i])
	}
	for i := range c.TrustRoots {
		c.TrustRoots[i] = abs(c.TrustRoots[i])
	}
}

// Validate checks the settings that do not need file access.
func (c *ContextConfig) Validate() error {
	if _, err := protocol.MethodByName(c.method()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := protocol.Parse(c.Protocols); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := parsePolicy(c.Encryption); err != nil {
		return err
	}
	if _, err := parseRenegotiation(c.Renegotiation); err != nil {
		return err
	}
	if (c.Certificate == "") != (c.Key == "") {
		return fmt.Errorf("%w: certificate and key must be set together", ErrInvalidConfig)
	}
	if c.Chain != "" && c.Certificate == "" {
		return fmt.Errorf("%w: chain without certificate", ErrInvalidConfig)
	}
	return nil
}

func (c *ContextConfig) method() string {
	if c.Method == "" {
		return DefaultMethod
	}
	return c.Method
}

// Build creates a context from cfg. Certificate, key and CA files are read
// here; a key that does not match the certificate is an error.
func Build(cfg *ContextConfig) (*ssl.Context, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil configuration", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	method, _ := protocol.MethodByName(cfg.method())
	ctx, err := ssl.NewContext(method)
	if err != nil {
		return nil, err
	}
	if err := apply(ctx, cfg); err != nil {
		ctx.Destroy()
		return nil, err
	}
	return ctx, nil
}

func apply(ctx *ssl.Context, cfg *ContextConfig) error {
	if len(cfg.Protocols) > 0 {
		mask, _ := protocol.Parse(cfg.Protocols)
		if err := ctx.SetProtocolVersions(mask); err != nil {
			return err
		}
	}

	policy, _ := parsePolicy(cfg.Encryption)
	if err := ctx.SetEncryptionPolicy(policy); err != nil {
		return err
	}
	reneg, _ := parseRenegotiation(cfg.Renegotiation)
	if err := ctx.SetRenegotiation(reneg); err != nil {
		return err
	}

	if cfg.Certificate != "" {
		certs, err := cert.ReadCertsFile(cfg.Certificate)
		if err != nil {
			return err
		}
		chain := certs[1:]
		if cfg.Chain != "" {
			extra, err := cert.ReadCertsFile(cfg.Chain)
			if err != nil {
				return err
			}
			chain = append(chain, extra...)
		}
		key, err := cert.ReadKeyFile(cfg.Key)
		if err != nil {
			return err
		}
		if err := ctx.UseCertificate(certs[0]); err != nil {
			return err
		}
		if err := ctx.UseCertificateChain(chain); err != nil {
			return err
		}
		if err := ctx.UsePrivateKey(key); err != nil {
			return err
		}
		if err := ctx.CheckPrivateKey(); err != nil {
			return err
		}
	}

	if len(cfg.ClientCAs) > 0 {
		cas, err := readAll(cfg.ClientCAs)
		if err != nil {
			return err
		}
		if err := ctx.SetClientCAList(cas); err != nil {
			return err
		}
	}

	if len(cfg.TrustRoots) > 0 {
		roots, err := readAll(cfg.TrustRoots)
		if err != nil {
			return err
		}
		pool := x509.NewCertPool()
		for _, c := range roots {
			pool.AddCert(c)
		}
		if err := ctx.SetTrustStore(pool); err != nil {
			return err
		}
	}

	if cfg.VerifyPeer {
		if err := ctx.SetVerifier(ssl.AcceptPreverified); err != nil {
			return err
		}
	}
	if cfg.QuietShutdown {
		if err := ctx.SetQuietShutdown(); err != nil {
			return err
		}
	}
	return nil
}

func readAll(paths []string) ([]*x509.Certificate, error) {
	var out []*x509.Certificate
	for _, p := range paths {
		certs, err := cert.ReadCertsFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, certs...)
	}
	return out, nil
}

func parsePolicy(s string) (ssl.EncryptionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "require":
		return ssl.RequireEncryption, nil
	case "allow":
		return ssl.AllowNoEncryption, nil
	case "none":
		return ssl.NoEncryption, nil
	default:
		return 0, fmt.Errorf("%w: encryption %q", ErrInvalidConfig, s)
	}
}

func parseRenegotiation(s string) (tls.RenegotiationSupport, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "freely":
		return tls.RenegotiateFreelyAsClient, nil
	case "once":
		return tls.RenegotiateOnceAsClient, nil
	case "never":
		return tls.RenegotiateNever, nil
	default:
		return 0, fmt.Errorf("%w: renegotiation %q", ErrInvalidConfig, s)
	}
}
