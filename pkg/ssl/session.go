package ssl

import (
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/mash-protocol/mash-tls/pkg/cert"
	"github.com/mash-protocol/mash-tls/pkg/log"
)

// State is the lifecycle state of a session.
type State int

const (
	StateCreated State = iota
	StateRoleSet
	StateHandshaking
	StateEstablished
	StateClosed
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateRoleSet:
		return "ROLE_SET"
	case StateHandshaking:
		return "HANDSHAKING"
	case StateEstablished:
		return "ESTABLISHED"
	case StateClosed:
		return "CLOSED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Progress of a peer-initiated renegotiation as seen on the inbound records.
const (
	renegIdle = iota
	renegAwaitCCS
	renegAwaitFinished
	renegFinished
)

// Session is one TLS connection driven over a pair of caller-owned buffers.
//
// A session is not safe for concurrent use. Every operation returns
// promptly: when the buffers cannot supply or absorb the bytes the protocol
// needs, the operation returns a would-block Result and the caller pumps the
// buffers and calls again.
type Session struct {
	id  uuid.UUID
	ctx *Context
	cfg *sessionConfig

	role    log.Role
	roleSet bool
	state   State

	rbio       io.Reader
	wbio       io.Writer
	serverName string
	peerName   string
	conn       *tls.Conn

	inbound   lane
	outbound  lane
	running   *task
	quit      chan struct{}
	destroyed bool

	inScan  recordScanner
	outScan recordScanner

	scratch []byte
	plain   []byte
	readErr error
	written *Result
	fatal   *Result

	sentShutdown     bool
	receivedShutdown bool
	renegotiating    bool
	renegPhase       int
	renegInfo        *ConnectionInfo

	// Inbound progress of the initial handshake's final flight.
	peerCCS      bool
	peerFinished bool
	pendingHello bool

	wire           uint16
	handshakes     int
	handshakeStart time.Time
	info           ConnectionInfo
	peerCert       *x509.Certificate
	peerChain      []*x509.Certificate
	clientCAs      []pkix.Name
}

// NewSession creates a session from ctx. The session copies the context's
// configuration; later changes to ctx do not affect it.
func NewSession(ctx *Context) (*Session, error) {
	if ctx == nil {
		return nil, ErrNullContext
	}
	cfg, err := ctx.snapshot()
	if err != nil {
		if errors.Is(err, ErrContextDestroyed) {
			return nil, fmt.Errorf("%w: %w", ErrNullContext, err)
		}
		return nil, err
	}

	s := &Session{
		id:       uuid.New(),
		ctx:      ctx,
		cfg:      cfg,
		inbound:  lane{name: "inbound"},
		outbound: lane{name: "outbound"},
		quit:     make(chan struct{}),
		scratch:  make([]byte, maxPlaintext),
	}
	cfg.tls.VerifyPeerCertificate = s.verifyPeer
	cfg.tls.VerifyConnection = s.verifyConnection
	cfg.tls.GetClientCertificate = s.clientCertificate
	cfg.tls.GetConfigForClient = s.clientHello

	ctx.live.Add(1)
	cfg.metrics.SessionOpened()
	s.debugLog("session created", "method", ctx.Method())
	return s, nil
}

// ID returns the session identifier used in log events.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id.String()
}

// State returns the lifecycle state.
func (s *Session) State() State {
	if s == nil {
		return StateError
	}
	return s.state
}

// SetConnectState makes the session the client of its handshake.
func (s *Session) SetConnectState() error {
	return s.setRole(log.RoleClient)
}

// SetAcceptState makes the session the server of its handshake.
func (s *Session) SetAcceptState() error {
	return s.setRole(log.RoleServer)
}

func (s *Session) setRole(role log.Role) error {
	if s == nil {
		return ErrNullSession
	}
	if s.destroyed {
		return ErrSessionDestroyed
	}
	if s.roleSet {
		return ErrRoleAlreadySet
	}
	s.role = role
	s.roleSet = true
	s.setState(StateRoleSet, role.String())
	return nil
}

// SetBuffers attaches the buffers the session reads ciphertext from and
// writes ciphertext to. The caller keeps ownership of both.
func (s *Session) SetBuffers(r io.Reader, w io.Writer) error {
	if s == nil {
		return ErrNullSession
	}
	if s.destroyed {
		return ErrSessionDestroyed
	}
	if r == nil || w == nil {
		return ErrNoBuffers
	}
	s.rbio, s.wbio = r, w
	return nil
}

// SetServerName sets the SNI name a client session sends and checks the
// server certificate against.
func (s *Session) SetServerName(name string) error {
	if s == nil {
		return ErrNullSession
	}
	if s.destroyed {
		return ErrSessionDestroyed
	}
	if s.conn != nil {
		return ErrHandshakeStarted
	}
	s.serverName = name
	return nil
}

// check rejects operations on sessions that cannot run one. The returned
// Result is reported without changing the session state.
func (s *Session) check(op Op) (Result, bool) {
	switch {
	case s == nil:
		return misuse(op, ErrNullSession), false
	case s.destroyed:
		return misuse(op, ErrSessionDestroyed), false
	case s.fatal != nil:
		return *s.fatal, false
	case !s.roleSet:
		return misuse(op, ErrRoleNotSet), false
	case s.rbio == nil || s.wbio == nil:
		return misuse(op, ErrNoBuffers), false
	}
	return Result{}, true
}

func misuse(op Op, err error) Result {
	return Result{N: -1, Code: ErrorSSL, err: &Error{Op: op, Code: ErrorSSL, Err: err}}
}

// DoHandshake advances the handshake as far as the buffers allow. It
// returns N = 1 once the session is established.
func (s *Session) DoHandshake() Result {
	if r, ok := s.check(OpHandshake); !ok {
		return r
	}

	switch s.state {
	case StateEstablished:
		if !s.renegotiating {
			return Result{N: 1}
		}
		return s.driveRenegotiation()
	case StateClosed:
		if s.handshakes > 0 {
			return Result{N: 1}
		}
		return Translate(OpHandshake, 0, io.EOF)
	}
	return s.handshake(OpHandshake)
}

func (s *Session) handshake(op Op) Result {
	if s.conn == nil {
		s.start()
	}

	ev, _ := s.step(&s.inbound, "handshake", func() (int, error) {
		return 0, s.conn.Handshake()
	})
	if ev.parked {
		return Translate(op, -1, wantErr(ev.want))
	}
	if ev.err != nil {
		res := Translate(op, 0, ev.err)
		if res.Closed() {
			s.receivedShutdown = true
			s.setState(StateClosed, "close_notify during handshake")
			return res
		}
		return s.fail(res)
	}

	s.established()
	return Result{N: 1}
}

func (s *Session) start() {
	s.cfg.tls.ServerName = s.serverName
	nc := &bioConn{s: s}
	if s.role == log.RoleClient {
		s.conn = tls.Client(nc, s.cfg.tls)
	} else {
		s.conn = tls.Server(nc, s.cfg.tls)
	}
	s.handshakeStart = time.Now()
	s.setState(StateHandshaking, "")
}

func (s *Session) established() {
	cs := s.conn.ConnectionState()
	s.info = newConnectionInfo(cs)
	s.wire = cs.Version
	s.handshakes++

	d := time.Since(s.handshakeStart)
	s.setState(StateEstablished, "handshake complete")
	s.logHandshake(false, d)
	s.cfg.metrics.RecordHandshake(s.role.String(), s.info.Version, false, d)
	s.debugLog("handshake complete",
		"version", s.info.Version,
		"cipher", s.info.CipherSuiteName,
		"duration", d)

	// A HelloRequest or ClientHello read together with the peer's Finished
	// was scanned before the session became established.
	if s.pendingHello && s.wire < tls.VersionTLS13 {
		s.beginRenegotiation()
	}
	s.pendingHello = false
}

// driveRenegotiation lets a renegotiation requested by the peer progress
// without application data.
func (s *Session) driveRenegotiation() Result {
	if r, ok := s.settleWrite(OpHandshake); !ok {
		return r
	}
	if r, ok := s.fill(OpHandshake); !ok {
		return r
	}
	if s.readErr != nil && !s.receivedShutdown {
		return s.fail(Translate(OpHandshake, -1, s.readErr))
	}
	if s.renegotiating {
		return Translate(OpHandshake, -1, errWantRead)
	}
	return Result{N: 1}
}

// Read decrypts application data into p. It runs the handshake first when
// the session is not established yet.
func (s *Session) Read(p []byte) Result {
	if r, ok := s.check(OpRead); !ok {
		return r
	}
	if s.state != StateEstablished && s.state != StateClosed {
		if r := s.handshake(OpRead); r.N != 1 {
			return r
		}
	}
	if len(p) == 0 {
		return Result{}
	}

	for {
		if len(s.plain) > 0 {
			n := copy(p, s.plain)
			s.plain = s.plain[n:]
			if len(s.plain) == 0 {
				s.plain = nil
			}
			return Result{N: n}
		}
		if s.readErr != nil {
			res := Translate(OpRead, 0, s.readErr)
			if res.Closed() {
				return res
			}
			return s.fail(res)
		}
		if s.receivedShutdown {
			return Translate(OpRead, 0, io.EOF)
		}

		if r, ok := s.settleWrite(OpRead); !ok {
			return r
		}
		if r, ok := s.fill(OpRead); !ok {
			return r
		}
	}
}

// fill runs or resumes a provider read into the plaintext buffer. It
// returns false with a would-block Result while the read is parked.
func (s *Session) fill(op Op) (Result, bool) {
	ev, _ := s.step(&s.inbound, "read", func() (int, error) {
		return s.conn.Read(s.scratch)
	})
	s.renegotiationProgress(ev)
	if ev.parked {
		return Translate(op, -1, wantErr(ev.want)), false
	}

	if ev.n > 0 {
		s.plain = append(s.plain, s.scratch[:ev.n]...)
	}
	if ev.err != nil {
		s.readErr = ev.err
		if classify(ev.err) == ErrorZeroReturn {
			s.receivedShutdown = true
			s.debugLog("close_notify received")
		}
	}
	return Result{}, true
}

// settleWrite resumes a write parked on a full write buffer so that the
// inbound direction does not wait on it.
func (s *Session) settleWrite(op Op) (Result, bool) {
	if s.outbound.pending == nil {
		return Result{}, true
	}
	ev, kind := s.step(&s.outbound, "", nil)
	if ev.parked {
		return Translate(op, -1, wantErr(ev.want)), false
	}

	switch kind {
	case "write":
		res := Translate(OpWrite, ev.n, ev.err)
		if res.Fatal() {
			return s.fail(res), false
		}
		s.written = &res
	case "close":
		if ev.err != nil {
			return s.fail(Translate(OpShutdown, -1, ev.err)), false
		}
		s.sentShutdown = true
	}
	return Result{}, true
}

// settleRead resumes an inbound read that holds the provider's write side
// or is in the middle of a renegotiation.
func (s *Session) settleRead(op Op) (Result, bool) {
	t := s.inbound.pending
	if t == nil || (t.want != ErrorWantWrite && !s.renegotiating) {
		return Result{}, true
	}
	if r, ok := s.fill(op); !ok {
		return r, false
	}
	if s.readErr != nil && !s.receivedShutdown {
		return s.fail(Translate(op, -1, s.readErr)), false
	}
	return Result{}, true
}

// Write encrypts p. After a would-block result the caller must call Write
// again with the same bytes.
func (s *Session) Write(p []byte) Result {
	if r, ok := s.check(OpWrite); !ok {
		return r
	}
	switch s.state {
	case StateEstablished:
	case StateClosed:
		if s.handshakes > 0 {
			return misuse(OpWrite, ErrShutdownSent)
		}
		return Translate(OpWrite, 0, io.EOF)
	default:
		if r := s.handshake(OpWrite); r.N != 1 {
			return r
		}
	}

	if r := s.written; r != nil {
		s.written = nil
		return *r
	}
	if s.sentShutdown {
		return misuse(OpWrite, ErrShutdownSent)
	}
	if t := s.outbound.pending; t != nil && t.kind == "close" {
		return misuse(OpWrite, ErrShutdownSent)
	}
	if len(p) == 0 {
		return Result{}
	}

	if s.outbound.pending == nil {
		if r, ok := s.settleRead(OpWrite); !ok {
			return r
		}
	}

	data := append([]byte(nil), p...)
	ev, _ := s.step(&s.outbound, "write", func() (int, error) {
		return s.conn.Write(data)
	})
	if ev.parked {
		return Translate(OpWrite, -1, wantErr(ev.want))
	}
	res := Translate(OpWrite, ev.n, ev.err)
	if res.Fatal() {
		return s.fail(res)
	}
	return res
}

// Shutdown closes the session. The first call sends close_notify and
// returns N = 0 until the peer's close_notify has been read; then it
// returns N = 1. With quiet shutdown configured it returns N = 1 at once
// and sends nothing.
func (s *Session) Shutdown() Result {
	if r, ok := s.check(OpShutdown); !ok {
		return r
	}
	switch s.state {
	case StateClosed:
		return Result{N: 1}
	case StateEstablished:
	default:
		return misuse(OpShutdown, ErrHandshakeIncomplete)
	}

	if s.cfg.quietShutdown {
		s.sentShutdown, s.receivedShutdown = true, true
		s.setState(StateClosed, "quiet shutdown")
		s.cfg.metrics.RecordShutdown("quiet")
		return Result{N: 1}
	}

	if !s.sentShutdown {
		if t := s.outbound.pending; t != nil && t.kind == "write" {
			if r, ok := s.settleWrite(OpShutdown); !ok {
				return r
			}
		}
		if r, ok := s.settleRead(OpShutdown); !ok {
			return r
		}

		ev, _ := s.step(&s.outbound, "close", func() (int, error) {
			return 0, s.conn.CloseWrite()
		})
		if ev.parked {
			return Translate(OpShutdown, -1, wantErr(ev.want))
		}
		if ev.err != nil {
			return s.fail(Translate(OpShutdown, -1, ev.err))
		}
		s.sentShutdown = true
		s.debugLog("close_notify sent")
	}

	for !s.receivedShutdown {
		if s.readErr != nil {
			return s.fail(Translate(OpShutdown, -1, s.readErr))
		}
		r, ok := s.fill(OpShutdown)
		if !ok {
			return Result{N: 0, Code: r.Code, err: r.err}
		}
	}

	s.setState(StateClosed, "shutdown complete")
	s.cfg.metrics.RecordShutdown("bidirectional")
	return Result{N: 1}
}

// IsRenegotiatePending reports whether the peer has started a renegotiation
// that has not completed yet.
func (s *Session) IsRenegotiatePending() bool {
	return s != nil && !s.destroyed && s.renegotiating && s.state == StateEstablished
}

// IsStateOK reports whether the session is established and carries
// application data in both directions.
func (s *Session) IsStateOK() bool {
	return s != nil && !s.destroyed &&
		s.state == StateEstablished &&
		!s.renegotiating && !s.sentShutdown && !s.receivedShutdown
}

// Version returns the label of the negotiated protocol version, or
// "unknown" before the handshake completes.
func (s *Session) Version() string {
	if s == nil || s.destroyed || s.handshakes == 0 {
		return "unknown"
	}
	return s.info.Version
}

// ConnectionInfo returns the negotiated parameters.
func (s *Session) ConnectionInfo() (ConnectionInfo, error) {
	switch {
	case s == nil:
		return ConnectionInfo{}, ErrNullSession
	case s.destroyed:
		return ConnectionInfo{}, ErrSessionDestroyed
	case s.handshakes == 0:
		return ConnectionInfo{}, ErrNotEstablished
	}
	return s.info, nil
}

// PeerCertificate returns the peer's leaf certificate, or nil when the peer
// sent none. It is available from the moment the certificate was received.
func (s *Session) PeerCertificate() *x509.Certificate {
	if s == nil || s.destroyed {
		return nil
	}
	return s.peerCert
}

// PeerCertChain returns the certificates the peer sent, leaf first.
func (s *Session) PeerCertChain() []*x509.Certificate {
	if s == nil || s.destroyed || len(s.peerChain) == 0 {
		return nil
	}
	return append([]*x509.Certificate(nil), s.peerChain...)
}

// ClientCAList returns the CA names relevant to client authentication: on a
// server, the names it advertises; on a client, the names the server sent
// in its certificate request.
func (s *Session) ClientCAList() []pkix.Name {
	if s == nil || s.destroyed {
		return nil
	}
	if s.role == log.RoleServer {
		return s.cfg.clientCANames
	}
	return s.clientCAs
}

// Destroy releases the session. Parked engine goroutines exit. It is safe
// on nil and on an already destroyed session.
func (s *Session) Destroy() {
	if s == nil || s.destroyed {
		return
	}
	s.destroyed = true
	close(s.quit)
	s.inbound.pending, s.outbound.pending = nil, nil
	s.plain, s.scratch, s.written = nil, nil, nil

	s.ctx.live.Add(-1)
	s.cfg.metrics.SessionClosed()
	s.debugLog("session destroyed", "state", s.state)
}

// fail records res as the session's terminal outcome.
func (s *Session) fail(res Result) Result {
	if s.fatal != nil {
		return *s.fatal
	}
	s.fatal = &res

	op := Op("")
	var se *Error
	if errors.As(res.err, &se) {
		op = se.Op
	}
	code := int(res.Code)
	s.logEvent(log.Event{
		Layer:    s.layer(),
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   s.layer(),
			Message: res.err.Error(),
			Code:    &code,
			Context: string(op),
		},
	})
	s.cfg.metrics.RecordFailure(s.role.String(), string(op), res.Code.String())
	s.setState(StateError, res.Code.String())
	return res
}

func (s *Session) layer() log.Layer {
	if s.state == StateHandshaking || s.renegotiating {
		return log.LayerHandshake
	}
	return log.LayerRecord
}

func (s *Session) setState(next State, reason string) {
	prev := s.state
	s.state = next
	s.logEvent(log.Event{
		Layer:    log.LayerSession,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: prev.String(),
			NewState: next.String(),
			Reason:   reason,
		},
	})
	s.debugLog("state change", "from", prev, "to", next, "reason", reason)
}

func (s *Session) logHandshake(renegotiation bool, d time.Duration) {
	ev := &log.HandshakeEvent{
		Version:       s.info.Version,
		CipherSuite:   s.info.CipherSuiteName,
		Renegotiation: renegotiation,
		Duration:      d,
	}
	if s.peerCert != nil {
		ev.PeerSubject = s.peerCert.Subject.String()
	}
	s.logEvent(log.Event{
		Layer:     log.LayerHandshake,
		Category:  log.CategoryHandshake,
		Handshake: ev,
	})
}

// logEvent fills the session fields of ev and hands it to the protocol
// logger, if any.
func (s *Session) logEvent(ev log.Event) {
	if s.cfg.protocolLogger == nil {
		return
	}
	ev.Timestamp = time.Now()
	ev.SessionID = s.id.String()
	ev.LocalRole = s.role
	ev.ServerName = s.serverName
	if s.role == log.RoleServer {
		ev.ServerName = s.peerName
	}
	s.cfg.protocolLogger.Log(ev)
}

func (s *Session) debugLog(msg string, args ...any) {
	if s.cfg.logger == nil {
		return
	}
	s.cfg.logger.Debug(msg, append([]any{"session", s.id.String(), "role", s.role}, args...)...)
}

// inboundRecord runs on the engine goroutine for every record header read
// from the peer.
func (s *Session) inboundRecord(h recordHeader) {
	s.onRecord(log.DirectionIn, h)
	if s.state == StateHandshaking {
		s.finalFlightRecord(h)
		return
	}
	if s.state != StateEstablished || s.wire >= tls.VersionTLS13 {
		return
	}
	switch {
	case !s.renegotiating && h.ContentType == contentTypeHandshake:
		// A handshake record on an established TLS 1.2 or older session is
		// a HelloRequest or ClientHello.
		s.beginRenegotiation()
	case s.renegotiating && h.ContentType == contentTypeChangeCipherSpec:
		s.renegPhase = renegAwaitFinished
	}
}

// finalFlightRecord watches the peer's records during the initial
// handshake. Up to TLS 1.2 the first handshake record after the peer's
// ChangeCipherSpec is its Finished, and any further one starts a new
// handshake. TLS 1.3 protects handshake records as application data.
func (s *Session) finalFlightRecord(h recordHeader) {
	switch {
	case h.ContentType == contentTypeChangeCipherSpec:
		s.peerCCS = true
	case h.ContentType != contentTypeHandshake || !s.peerCCS:
	case !s.peerFinished:
		s.peerFinished = true
	default:
		s.pendingHello = true
	}
}

func (s *Session) beginRenegotiation() {
	s.renegotiating = true
	s.renegPhase = renegAwaitCCS
	s.renegInfo = nil
	s.debugLog("renegotiation requested by peer")
}

func (s *Session) inboundRecordEnd(h recordHeader) {
	if s.renegotiating && s.renegPhase == renegAwaitFinished && h.ContentType == contentTypeHandshake {
		s.renegPhase = renegFinished
	}
}

func (s *Session) outboundRecord(h recordHeader) {
	s.onRecord(log.DirectionOut, h)
}

func (s *Session) onRecord(dir log.Direction, h recordHeader) {
	label := "in"
	if dir == log.DirectionOut {
		label = "out"
	}
	s.cfg.metrics.RecordRecord(label, log.ContentTypeName(h.ContentType))
	s.logEvent(log.Event{
		Direction: dir,
		Layer:     log.LayerRecord,
		Category:  log.CategoryRecord,
		Record: &log.RecordEvent{
			ContentType: h.ContentType,
			Version:     h.Version,
			Length:      h.Length,
		},
	})
}

// renegotiationProgress ends a renegotiation once the provider consumed the
// peer's Finished. The provider only asks for more ciphertext after it has
// processed every complete record it holds.
func (s *Session) renegotiationProgress(ev event) {
	if !s.renegotiating || s.renegPhase != renegFinished {
		return
	}
	if ev.parked && ev.want != ErrorWantRead {
		return
	}

	s.renegotiating = false
	s.renegPhase = renegIdle
	if s.renegInfo != nil {
		s.info = *s.renegInfo
		s.renegInfo = nil
	}
	s.handshakes++
	s.logHandshake(true, 0)
	s.cfg.metrics.RecordHandshake(s.role.String(), s.info.Version, true, 0)
	s.debugLog("renegotiation complete", "cipher", s.info.CipherSuiteName)
}

// verifyPeer runs on the engine goroutine once the peer's certificates
// arrived.
func (s *Session) verifyPeer(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return nil
	}
	chain := make([]*x509.Certificate, 0, len(rawCerts))
	for _, raw := range rawCerts {
		c, err := x509.ParseCertificate(raw)
		if err != nil {
			return fmt.Errorf("parse peer certificate: %w", err)
		}
		chain = append(chain, c)
	}
	s.peerCert, s.peerChain = chain[0], chain

	if s.cfg.certVerifier == nil && s.cfg.verifier == nil {
		return nil
	}

	isServer := s.role == log.RoleServer
	vc := &VerificationContext{
		Certificate: chain[0],
		Chain:       chain,
		ServerName:  s.serverName,
		IsServer:    isServer,
		Roots:       s.cfg.roots,
	}
	if isServer {
		vc.ServerName = s.peerName
	}

	v := s.cfg.certVerifier
	if v == nil {
		v = s.cfg.verifier
		opts := cert.VerifyOptions{
			Roots: s.cfg.roots,
			Usage: x509.ExtKeyUsageServerAuth,
		}
		if isServer {
			opts.Usage = x509.ExtKeyUsageClientAuth
		} else {
			opts.DNSName = s.serverName
		}
		_, err := cert.VerifyChain(chain[0], chain[1:], opts)
		vc.PreverifyOK = err == nil
		vc.Err = err
	}

	if !v.Verify(vc) {
		s.debugLog("peer certificate rejected",
			"subject", chain[0].Subject.String(),
			"preverify", vc.PreverifyOK)
		return fmt.Errorf("%w: %s", ErrCertificateRejected, chain[0].Subject)
	}
	return nil
}

// verifyConnection runs on the engine goroutine near the end of every
// handshake. For a renegotiation it records the new parameters, which take
// effect once the handshake finished.
func (s *Session) verifyConnection(cs tls.ConnectionState) error {
	if s.handshakes > 0 {
		info := newConnectionInfo(cs)
		s.renegInfo = &info
	}
	return nil
}

// clientCertificate answers a server's certificate request. The names the
// server accepts are kept for ClientCAList.
func (s *Session) clientCertificate(cri *tls.CertificateRequestInfo) (*tls.Certificate, error) {
	s.clientCAs = parseDistinguishedNames(cri.AcceptableCAs)
	if s.cfg.clientCert != nil {
		return s.cfg.clientCert, nil
	}
	return &tls.Certificate{}, nil
}

// clientHello records the SNI name a client asked a server session for.
func (s *Session) clientHello(hello *tls.ClientHelloInfo) (*tls.Config, error) {
	s.peerName = hello.ServerName
	return nil, nil
}
