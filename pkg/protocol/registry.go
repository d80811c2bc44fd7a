package protocol

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var registryYAML []byte

// Registry errors.
var (
	ErrUnknownProtocol = errors.New("unknown protocol")
	ErrUnknownMethod   = errors.New("unknown protocol method")
)

// UnknownLabel is returned for versions the registry does not know.
const UnknownLabel = "unknown"

// Info describes a single protocol version.
type Info struct {
	// Name is the registry name ("TLS12").
	Name string `yaml:"name"`

	// Label is the version string reported for a negotiated session ("TLSv1.2").
	Label string `yaml:"label"`

	// Mask is the protocol's bit in a Protocols mask.
	Mask Protocols `yaml:"mask"`

	// Wire is the on-the-wire version number.
	Wire uint16 `yaml:"wire"`

	// Supported reports whether the crypto provider can negotiate this version.
	Supported bool `yaml:"supported"`
}

// Method is an immutable descriptor selecting a protocol family.
// Methods are shared and live for the whole process.
type Method struct {
	name     string
	versions Protocols
}

// Name returns the method name ("TLSv1_2").
func (m *Method) Name() string { return m.name }

// Versions returns the protocol versions this method may negotiate.
func (m *Method) Versions() Protocols { return m.versions }

// String implements fmt.Stringer.
func (m *Method) String() string {
	return fmt.Sprintf("%s(%s)", m.name, m.versions)
}

type registryFile struct {
	Protocols []Info `yaml:"protocols"`
	Methods   []struct {
		Name      string   `yaml:"name"`
		Protocols []string `yaml:"protocols"`
	} `yaml:"methods"`
}

type registry struct {
	protocols []Info
	methods   map[string]*Method
}

var (
	initOnce sync.Once
	initErr  error
	reg      *registry
)

// EnsureInitialized loads the protocol registry. It is safe to call from
// multiple goroutines; the table is parsed exactly once and the same error,
// if any, is returned on every call.
func EnsureInitialized() error {
	initOnce.Do(func() {
		reg, initErr = loadRegistry(registryYAML)
	})
	return initErr
}

func loadRegistry(data []byte) (*registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing protocol registry: %w", err)
	}

	r := &registry{
		protocols: f.Protocols,
		methods:   make(map[string]*Method, len(f.Methods)),
	}
	sort.Slice(r.protocols, func(i, j int) bool {
		return r.protocols[i].Wire < r.protocols[j].Wire
	})

	byName := make(map[string]Protocols, len(r.protocols))
	for _, p := range r.protocols {
		if p.Mask == None {
			return nil, fmt.Errorf("protocol %q has an empty mask", p.Name)
		}
		byName[p.Name] = p.Mask
	}

	for _, m := range f.Methods {
		var versions Protocols
		for _, name := range m.Protocols {
			mask, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("method %q: %w: %q", m.Name, ErrUnknownProtocol, name)
			}
			versions |= mask
		}
		r.methods[m.Name] = &Method{name: m.Name, versions: versions}
	}
	return r, nil
}

func mustRegistry() *registry {
	if err := EnsureInitialized(); err != nil {
		panic(fmt.Sprintf("protocol registry: %v", err))
	}
	return reg
}

// All returns every known protocol version in ascending wire order.
func All() []Info {
	r := mustRegistry()
	out := make([]Info, len(r.protocols))
	copy(out, r.protocols)
	return out
}

// Lookup returns the entry for a single protocol bit.
func Lookup(p Protocols) (Info, bool) {
	for _, info := range mustRegistry().protocols {
		if info.Mask == p {
			return info, true
		}
	}
	return Info{}, false
}

// ByWire returns the entry for an on-the-wire version number.
func ByWire(v uint16) (Info, bool) {
	for _, info := range mustRegistry().protocols {
		if info.Wire == v {
			return info, true
		}
	}
	return Info{}, false
}

// ByLabel maps a negotiated version label back to its protocol entry.
func ByLabel(label string) (Info, bool) {
	for _, info := range mustRegistry().protocols {
		if info.Label == label {
			return info, true
		}
	}
	return Info{}, false
}

// Label returns the version label for a wire version, or UnknownLabel.
func Label(v uint16) string {
	if info, ok := ByWire(v); ok {
		return info.Label
	}
	return UnknownLabel
}

// FromLabel maps a version label to its protocol bit, None if unknown.
func FromLabel(label string) Protocols {
	if info, ok := ByLabel(label); ok {
		return info.Mask
	}
	return None
}

// MethodByName returns the method descriptor with the given name.
func MethodByName(name string) (*Method, error) {
	m, ok := mustRegistry().methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
	return m, nil
}

func mustMethod(name string) *Method {
	m, err := MethodByName(name)
	if err != nil {
		panic(err)
	}
	return m
}

// NegotiateMethod returns the version-flexible method, the equivalent of
// SSLv23_method: any version enabled on the context may be negotiated.
func NegotiateMethod() *Method { return mustMethod("SSLv23") }

// SSL3Method returns the SSLv3-only method.
func SSL3Method() *Method { return mustMethod("SSLv3") }

// TLS10Method returns the TLSv1-only method.
func TLS10Method() *Method { return mustMethod("TLSv1") }

// TLS11Method returns the TLSv1.1-only method.
func TLS11Method() *Method { return mustMethod("TLSv1_1") }

// TLS12Method returns the TLSv1.2-only method.
func TLS12Method() *Method { return mustMethod("TLSv1_2") }

// TLS13Method returns the TLSv1.3-only method.
func TLS13Method() *Method { return mustMethod("TLSv1_3") }
