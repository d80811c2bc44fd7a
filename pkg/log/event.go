package log

import "time"

// Event represents a protocol log event captured by a TLS session.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates data flow relative to the local endpoint.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// LocalRole indicates whether the session connects or accepts.
	LocalRole Role `cbor:"6,keyasint,omitempty"`

	// ServerName is the SNI name, when one was configured or received.
	ServerName string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Record      *RecordEvent      `cbor:"10,keyasint,omitempty"` // Record layer
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"` // Session state machine
	Handshake   *HandshakeEvent   `cbor:"12,keyasint,omitempty"` // Completed handshakes
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"` // Classified failures
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates bytes received from the peer.
	DirectionIn Direction = 0
	// DirectionOut indicates bytes sent to the peer.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which part of the session captured the event.
type Layer uint8

const (
	// LayerRecord is the TLS record layer (ciphertext framing).
	LayerRecord Layer = 0
	// LayerHandshake is the handshake protocol.
	LayerHandshake Layer = 1
	// LayerSession is the session state machine.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerRecord:
		return "RECORD"
	case LayerHandshake:
		return "HANDSHAKE"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryRecord indicates a TLS record crossed the buffers.
	CategoryRecord Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryHandshake indicates a completed handshake summary.
	CategoryHandshake Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryRecord:
		return "RECORD"
	case CategoryState:
		return "STATE"
	case CategoryHandshake:
		return "HANDSHAKE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role indicates the handshake role of the local endpoint.
type Role uint8

const (
	// RoleClient indicates the session was put in connect state.
	RoleClient Role = 0
	// RoleServer indicates the session was put in accept state.
	RoleServer Role = 1
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleClient:
		return "CLIENT"
	case RoleServer:
		return "SERVER"
	default:
		return "UNKNOWN"
	}
}

// TLS record content types.
const (
	ContentChangeCipherSpec uint8 = 20
	ContentAlert            uint8 = 21
	ContentHandshake        uint8 = 22
	ContentApplicationData  uint8 = 23
)

// ContentTypeName returns the name of a TLS record content type.
func ContentTypeName(t uint8) string {
	switch t {
	case ContentChangeCipherSpec:
		return "CHANGE_CIPHER_SPEC"
	case ContentAlert:
		return "ALERT"
	case ContentHandshake:
		return "HANDSHAKE"
	case ContentApplicationData:
		return "APPLICATION_DATA"
	default:
		return "UNKNOWN"
	}
}

// RecordEvent captures one TLS record header seen on the buffers.
type RecordEvent struct {
	// ContentType is the record's content type byte.
	ContentType uint8 `cbor:"1,keyasint"`

	// Version is the legacy record version field.
	Version uint16 `cbor:"2,keyasint"`

	// Length is the record body length in bytes.
	Length int `cbor:"3,keyasint"`
}

// StateChangeEvent captures session lifecycle transitions.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// HandshakeEvent summarizes a completed handshake.
type HandshakeEvent struct {
	// Version is the negotiated protocol label ("TLSv1.2").
	Version string `cbor:"1,keyasint"`

	// CipherSuite is the negotiated suite name.
	CipherSuite string `cbor:"2,keyasint"`

	// PeerSubject is the subject of the peer's leaf certificate, if any.
	PeerSubject string `cbor:"3,keyasint,omitempty"`

	// Renegotiation is set for handshakes after the first one.
	Renegotiation bool `cbor:"4,keyasint,omitempty"`

	// Duration is the wall time from the first handshake step to completion.
	Duration time.Duration `cbor:"5,keyasint,omitempty"`
}

// ErrorEventData captures classified failures.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the session error code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
