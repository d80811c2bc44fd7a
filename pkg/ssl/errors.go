package ssl

import (
	"errors"
	"fmt"
	"io"
)

// Configuration and lifecycle errors.
var (
	ErrNullContext         = errors.New("ssl: null context")
	ErrNullSession         = errors.New("ssl: null session")
	ErrContextDestroyed    = errors.New("ssl: context destroyed")
	ErrSessionDestroyed    = errors.New("ssl: session destroyed")
	ErrRoleAlreadySet      = errors.New("ssl: handshake role already set")
	ErrRoleNotSet          = errors.New("ssl: handshake role not set")
	ErrNoBuffers           = errors.New("ssl: no buffers attached")
	ErrNotEstablished      = errors.New("ssl: session not established")
	ErrHandshakeStarted    = errors.New("ssl: handshake already started")
	ErrHandshakeIncomplete = errors.New("ssl: handshake not complete")
	ErrShutdownSent        = errors.New("ssl: shutdown already sent")
	ErrNoCertificate       = errors.New("ssl: no certificate assigned")
	ErrNoPrivateKey        = errors.New("ssl: no private key assigned")
	ErrKeyMismatch         = errors.New("ssl: private key does not match certificate")
	ErrUnsupportedKey      = errors.New("ssl: unsupported private key type")
	ErrNoUsableProtocol    = errors.New("ssl: no usable protocol version")
	ErrCertificateRejected = errors.New("ssl: peer certificate rejected")
)

// Engine signals. They never escape a Result's Err unwrapped.
var (
	errWantRead  = errors.New("ssl: want read")
	errWantWrite = errors.New("ssl: want write")
	errAbandoned = errors.New("ssl: session destroyed while engine parked")
)

// ErrorCode is the closed classification every session operation outcome
// maps to. Values match the native SSL_ERROR_* codes.
type ErrorCode int

const (
	ErrorNone       ErrorCode = 0
	ErrorSSL        ErrorCode = 1
	ErrorWantRead   ErrorCode = 2
	ErrorWantWrite  ErrorCode = 3
	ErrorSyscall    ErrorCode = 5
	ErrorZeroReturn ErrorCode = 6
)

// String returns the code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrorNone:
		return "NONE"
	case ErrorSSL:
		return "SSL"
	case ErrorWantRead:
		return "WANT_READ"
	case ErrorWantWrite:
		return "WANT_WRITE"
	case ErrorSyscall:
		return "SYSCALL"
	case ErrorZeroReturn:
		return "ZERO_RETURN"
	default:
		return "UNKNOWN"
	}
}

// Op names the session operation a result belongs to.
type Op string

const (
	OpHandshake Op = "handshake"
	OpRead      Op = "read"
	OpWrite     Op = "write"
	OpShutdown  Op = "shutdown"
)

// Error is the error carried by every non-successful Result.
type Error struct {
	Op   Op
	Code ErrorCode
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("ssl: %s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("ssl: %s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// TransportError reports a failure of the attached buffers themselves, as
// opposed to a protocol failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "ssl: transport " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// CodeOf returns the ErrorCode carried by err, ErrorNone for nil and
// ErrorSSL for errors that did not come from a session operation.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrorNone
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrorSSL
}

// Translate maps the raw outcome of an engine operation to a Result. The
// classification depends only on op, n and err:
//
//	nil                               -> ErrorNone, N = n
//	want read / want write            -> ErrorWantRead / ErrorWantWrite, N = -1
//	*TransportError, unexpected EOF   -> ErrorSyscall, N = -1
//	io.EOF (close_notify received)    -> ErrorZeroReturn, N = 0
//	anything else                     -> ErrorSSL, N = -1
func Translate(op Op, n int, err error) Result {
	if err == nil {
		return Result{N: n, Code: ErrorNone}
	}

	code := classify(err)
	res := Result{N: -1, Code: code, err: &Error{Op: op, Code: code, Err: err}}
	if code == ErrorZeroReturn {
		res.N = 0
	}
	return res
}

func classify(err error) ErrorCode {
	var te *TransportError
	switch {
	case errors.Is(err, errWantRead):
		return ErrorWantRead
	case errors.Is(err, errWantWrite):
		return ErrorWantWrite
	case errors.As(err, &te),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, errAbandoned):
		return ErrorSyscall
	case errors.Is(err, io.EOF):
		return ErrorZeroReturn
	default:
		return ErrorSSL
	}
}

// wantErr returns the engine signal for a would-block code.
func wantErr(code ErrorCode) error {
	if code == ErrorWantWrite {
		return errWantWrite
	}
	return errWantRead
}
