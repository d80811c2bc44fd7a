// Command tls-loopback runs a client and a server session against each
// other over in-memory buffers.
//
// It performs a handshake, echoes a random payload in both directions and
// shuts both sessions down, then prints the negotiated parameters. Without
// configuration files it issues a throwaway CA and server certificate.
//
// Usage:
//
//	tls-loopback [flags]
//
// Flags:
//
//	-server-config string   Server context configuration (YAML or TOML)
//	-client-config string   Client context configuration (YAML or TOML)
//	-server-name string     SNI name the client sends (default "loopback.test")
//	-bytes int              Payload size echoed in each direction (default 65536)
//	-buffer-limit int       Capacity of each transport buffer, 0 for unbounded
//	-log-level string       Log level: debug, info, warn, error (default "info")
//	-protocol-log string    File path for protocol event logging (CBOR format)
//	-metrics-addr string    Serve Prometheus metrics on this address after the run
//
// Examples:
//
//	# Run with generated certificates and record the protocol events
//	tls-loopback -protocol-log loopback.tlog
//
//	# Run with configured contexts and small buffers
//	tls-loopback -server-config server.yaml -client-config client.toml -buffer-limit 512
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	tlslog "github.com/mash-protocol/mash-tls/pkg/log"
	"github.com/mash-protocol/mash-tls/pkg/metrics"
	"github.com/mash-protocol/mash-tls/pkg/ssl"
)

var (
	serverConfig = flag.String("server-config", "", "Server context configuration (YAML or TOML)")
	clientConfig = flag.String("client-config", "", "Client context configuration (YAML or TOML)")
	serverName   = flag.String("server-name", "loopback.test", "SNI name the client sends")
	payloadSize  = flag.Int("bytes", 65536, "Payload size echoed in each direction")
	bufferLimit  = flag.Int("buffer-limit", 0, "Capacity of each transport buffer, 0 for unbounded")
	logLevel     = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	protocolLog  = flag.String("protocol-log", "", "File path for protocol event logging (CBOR format)")
	metricsAddr  = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address after the run")
)

func main() {
	flag.Parse()

	logger, err := newLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := execute(logger); err != nil {
		logger.Error("loopback failed", "error", err)
		os.Exit(1)
	}
}

func execute(logger *slog.Logger) error {
	if *payloadSize < 0 || *bufferLimit < 0 {
		return errors.New("-bytes and -buffer-limit must not be negative")
	}

	client, server, err := loadContexts(options{
		ServerConfig: *serverConfig,
		ClientConfig: *clientConfig,
		ServerName:   *serverName,
	})
	if err != nil {
		return err
	}
	defer client.Destroy()
	defer server.Destroy()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return err
	}

	var protocolLogger tlslog.Logger = tlslog.NoopLogger{}
	if *protocolLog != "" {
		fl, err := tlslog.NewFileLogger(*protocolLog)
		if err != nil {
			return fmt.Errorf("protocol log: %w", err)
		}
		defer fl.Close()
		protocolLogger = fl
		logger.Info("protocol logging enabled", "path", *protocolLog)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		console := tlslog.OnlyCategories(tlslog.NewSlogAdapter(logger),
			tlslog.CategoryState, tlslog.CategoryHandshake, tlslog.CategoryError)
		protocolLogger = tlslog.NewMultiLogger(protocolLogger, console)
	}

	for _, ctx := range []*ssl.Context{client, server} {
		if err := errors.Join(
			ctx.SetLogger(logger),
			ctx.SetProtocolLogger(protocolLogger),
			ctx.SetMetrics(collector),
		); err != nil {
			return err
		}
	}

	rep, err := run(client, server, options{
		ServerName: *serverName,
		Payload:    *payloadSize,
		Limit:      *bufferLimit,
	}, logger)
	if err != nil {
		return err
	}
	printReport(rep)

	if *metricsAddr != "" {
		return serveMetrics(reg, *metricsAddr, logger)
	}
	return nil
}

func printReport(rep *report) {
	fmt.Printf("Protocol:     %s\n", rep.Client.Version)
	fmt.Printf("Cipher suite: %s\n", rep.Client.CipherSuiteName)
	fmt.Printf("Cipher:       %s (%d bits)\n", rep.Client.Cipher, rep.Client.KeySize)
	fmt.Printf("Exchange:     %s\n", rep.Client.Exchange)
	fmt.Printf("Hash:         %s\n", rep.Client.Hash)
	if rep.Server.ServerName != "" {
		fmt.Printf("Server name:  %s\n", rep.Server.ServerName)
	}
	if rep.Peer != nil {
		fmt.Printf("Server cert:  %s\n", rep.Peer.Subject)
		fmt.Printf("Issued by:    %s\n", rep.Peer.Issuer)
		fmt.Printf("Valid until:  %s\n", rep.Peer.NotAfter.Format(time.RFC3339))
	}
	if rep.ClientCAs > 0 {
		fmt.Printf("Client CAs:   %d\n", rep.ClientCAs)
	}
	fmt.Printf("Echoed:       %d bytes each way\n", rep.Echoed)
}

// serveMetrics exposes reg until SIGINT or SIGTERM.
func serveMetrics(reg *prometheus.Registry, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("serving metrics", "addr", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig.String())
		return srv.Close()
	case err := <-errCh:
		return err
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}
