package main

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mash-protocol/mash-tls/pkg/bio"
	"github.com/mash-protocol/mash-tls/pkg/cert"
	"github.com/mash-protocol/mash-tls/pkg/config"
	"github.com/mash-protocol/mash-tls/pkg/ssl"
)

// maxRounds bounds every pump loop so a stuck peer cannot spin forever.
const maxRounds = 100000

var errStalled = errors.New("loopback: no progress")

// options configures one loopback run.
type options struct {
	ServerConfig string
	ClientConfig string
	ServerName   string
	Payload      int
	Limit        int
}

// report summarizes a finished run.
type report struct {
	Client    ssl.ConnectionInfo
	Server    ssl.ConnectionInfo
	Peer      *cert.CertificateInfo
	Echoed    int
	ClientCAs int
}

// endpoint is one side of the loopback.
type endpoint struct {
	s    *ssl.Session
	pair bio.Pair
}

// loadContexts builds the two contexts from files, or from a throwaway PKI
// when no files are given.
func loadContexts(opts options) (client, server *ssl.Context, err error) {
	if opts.ServerConfig == "" && opts.ClientConfig == "" {
		return ephemeralContexts(opts.ServerName)
	}
	if opts.ServerConfig == "" || opts.ClientConfig == "" {
		return nil, nil, errors.New("loopback: -server-config and -client-config go together")
	}
	server, err = buildFromFile(opts.ServerConfig)
	if err != nil {
		return nil, nil, err
	}
	client, err = buildFromFile(opts.ClientConfig)
	if err != nil {
		server.Destroy()
		return nil, nil, err
	}
	return client, server, nil
}

func buildFromFile(path string) (*ssl.Context, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return config.Build(cfg)
}

func ephemeralContexts(serverName string) (client, server *ssl.Context, err error) {
	ca, err := cert.NewCA("Loopback CA", cert.KeyTypeECDSAP256)
	if err != nil {
		return nil, nil, err
	}
	id, err := cert.Issue(ca, cert.Template{
		CommonName: serverName,
		DNSNames:   []string{serverName},
		Server:     true,
	})
	if err != nil {
		return nil, nil, err
	}

	server, err = config.Build(&config.ContextConfig{})
	if err != nil {
		return nil, nil, err
	}
	if err = errors.Join(
		server.UseCertificate(id.Certificate),
		server.UseCertificateChain(id.Chain),
		server.UsePrivateKey(id.PrivateKey),
		server.CheckPrivateKey(),
	); err != nil {
		server.Destroy()
		return nil, nil, err
	}

	client, err = config.Build(&config.ContextConfig{VerifyPeer: true})
	if err == nil {
		err = client.SetTrustStore(ca.Pool())
	}
	if err != nil {
		if client != nil {
			client.Destroy()
		}
		server.Destroy()
		return nil, nil, err
	}
	return client, server, nil
}

func newEndpoint(ctx *ssl.Context, accept bool, limit int) (*endpoint, error) {
	s, err := ssl.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	if accept {
		err = s.SetAcceptState()
	} else {
		err = s.SetConnectState()
	}
	pair := bio.NewPair()
	if limit > 0 {
		pair = bio.Pair{In: bio.NewLimited(limit), Out: bio.NewLimited(limit)}
	}
	if err == nil {
		err = s.SetBuffers(pair.In, pair.Out)
	}
	if err != nil {
		s.Destroy()
		return nil, err
	}
	return &endpoint{s: s, pair: pair}, nil
}

// run performs handshake, echo and shutdown between a client and a server
// session wired back to back.
func run(client, server *ssl.Context, opts options, logger *slog.Logger) (*report, error) {
	cli, err := newEndpoint(client, false, opts.Limit)
	if err != nil {
		return nil, err
	}
	defer cli.s.Destroy()
	srv, err := newEndpoint(server, true, opts.Limit)
	if err != nil {
		return nil, err
	}
	defer srv.s.Destroy()

	if opts.ServerName != "" {
		if err := cli.s.SetServerName(opts.ServerName); err != nil {
			return nil, err
		}
	}

	if err := handshake(cli, srv); err != nil {
		return nil, err
	}
	rep := &report{ClientCAs: len(cli.s.ClientCAList())}
	if rep.Client, err = cli.s.ConnectionInfo(); err != nil {
		return nil, err
	}
	if rep.Server, err = srv.s.ConnectionInfo(); err != nil {
		return nil, err
	}
	rep.Peer = cert.GetCertificateInfo(cli.s.PeerCertificate())
	logger.Info("handshake complete",
		"version", rep.Client.Version,
		"suite", rep.Client.CipherSuiteName)

	payload := make([]byte, opts.Payload)
	if _, err := rand.Read(payload); err != nil {
		return nil, err
	}
	if err := transfer(cli, srv, payload); err != nil {
		return nil, fmt.Errorf("client to server: %w", err)
	}
	if err := transfer(srv, cli, payload); err != nil {
		return nil, fmt.Errorf("server to client: %w", err)
	}
	rep.Echoed = len(payload)
	logger.Info("echo complete", "bytes", rep.Echoed)

	if err := shutdown(cli, srv); err != nil {
		return nil, err
	}
	logger.Info("shutdown complete",
		"client", cli.s.State().String(),
		"server", srv.s.State().String())
	return rep, nil
}

// handshake steps both sessions until each finished.
func handshake(cli, srv *endpoint) error {
	var rc, rs ssl.Result
	for range maxRounds {
		rc, rs = cli.s.DoHandshake(), srv.s.DoHandshake()
		if rc.Fatal() {
			return fmt.Errorf("client handshake: %w", rc.Err())
		}
		if rs.Fatal() {
			return fmt.Errorf("server handshake: %w", rs.Err())
		}
		moved := bio.Pump(cli.pair, srv.pair)
		if rc.N == 1 && rs.N == 1 {
			return nil
		}
		if moved == 0 && rc.WouldBlock() && rs.WouldBlock() {
			return fmt.Errorf("%w: handshake (client %v, server %v)", errStalled, rc.Code, rs.Code)
		}
	}
	return fmt.Errorf("%w: handshake", errStalled)
}

// transfer writes payload on src and reads it back on dst.
func transfer(src, dst *endpoint, payload []byte) error {
	var got []byte
	sent := 0
	buf := make([]byte, 4096)
	for range maxRounds {
		if sent < len(payload) {
			r := src.s.Write(payload[sent:])
			switch {
			case r.N > 0:
				sent += r.N
			case !r.WouldBlock():
				return fmt.Errorf("write: %w", r.Err())
			}
		}

		r := dst.s.Read(buf)
		switch {
		case r.N > 0:
			got = append(got, buf[:r.N]...)
		case !r.WouldBlock():
			return fmt.Errorf("read: %w", r.Err())
		}

		if len(got) == len(payload) {
			if !bytes.Equal(got, payload) {
				return errors.New("loopback: payload mismatch")
			}
			return nil
		}
		bio.Pump(src.pair, dst.pair)
	}
	return fmt.Errorf("%w: %d of %d bytes", errStalled, len(got), len(payload))
}

// shutdown closes the client first and lets the server answer.
func shutdown(cli, srv *endpoint) error {
	var rc, rs ssl.Result
	for range maxRounds {
		if rc.N != 1 {
			rc = cli.s.Shutdown()
			if rc.Fatal() {
				return fmt.Errorf("client shutdown: %w", rc.Err())
			}
		}
		if rs.N != 1 {
			rs = srv.s.Shutdown()
			if rs.Fatal() {
				return fmt.Errorf("server shutdown: %w", rs.Err())
			}
		}
		bio.Pump(cli.pair, srv.pair)
		if rc.N == 1 && rs.N == 1 {
			return nil
		}
	}
	return fmt.Errorf("%w: shutdown", errStalled)
}
