package telnet

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/cory-johannsen/dicebot/internal/config"
)

// ServerFullMessage is sent to clients refused because MaxConnections
// sessions are already open.
const ServerFullMessage = "The server is full. Please try again later."

// SessionHandler runs the conversation with one connected client.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// Acceptor listens for Telnet clients, optionally over TLS, and runs each
// one through a SessionHandler on its own goroutine.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger
	slots   *semaphore.Weighted

	mu       sync.Mutex
	listener net.Listener
	running  bool

	sessions sync.WaitGroup
	quit     chan struct{}
}

// NewAcceptor creates an acceptor for cfg.
//
// Precondition: handler and logger must be non-nil.
// Postcondition: the acceptor is idle until ListenAndServe is called.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	a := &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		quit:    make(chan struct{}),
	}
	if cfg.MaxConnections > 0 {
		a.slots = semaphore.NewWeighted(int64(cfg.MaxConnections))
	}
	return a
}

// listen opens the TCP listener and layers TLS on it when configured.
func (a *Acceptor) listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}
	if !a.cfg.TLSEnabled() {
		return ln, nil
	}
	cert, err := tls.LoadX509KeyPair(a.cfg.TLSCertFile, a.cfg.TLSKeyFile)
	if err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("loading tls key pair: %w", err)
	}
	return tls.NewListener(ln, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}), nil
}

// ListenAndServe accepts clients until Stop is called.
//
// Precondition: the acceptor has not been started before.
// Postcondition: returns nil after Stop, or the error that prevented
// listening.
func (a *Acceptor) ListenAndServe() error {
	start := time.Now()
	ln, err := a.listen()
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.listener = ln
	a.running = true
	a.mu.Unlock()

	a.logger.Info("telnet acceptor listening",
		zap.String("addr", ln.Addr().String()),
		zap.Bool("tls", a.cfg.TLSEnabled()),
		zap.Int("max_connections", a.cfg.MaxConnections),
		zap.Duration("startup", time.Since(start)),
	)

	for {
		raw, err := ln.Accept()
		if err != nil {
			select {
			case <-a.quit:
				return nil
			default:
				a.logger.Error("accepting connection", zap.Error(err))
				continue
			}
		}

		a.sessions.Add(1)
		if a.slots != nil && !a.slots.TryAcquire(1) {
			go a.refuse(raw)
			continue
		}
		go a.serve(raw)
	}
}

// refuse tells a client the server is full and hangs up.
func (a *Acceptor) refuse(raw net.Conn) {
	defer a.sessions.Done()
	a.logger.Warn("connection refused, server full",
		zap.String("remote_addr", raw.RemoteAddr().String()),
		zap.Int("max_connections", a.cfg.MaxConnections),
	)
	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	_ = conn.WriteLine(ServerFullMessage)
	_ = conn.Close()
}

// serve runs one session. The session context is cancelled and the
// connection closed when the acceptor stops, which unblocks pending reads.
func (a *Acceptor) serve(raw net.Conn) {
	defer a.sessions.Done()
	if a.slots != nil {
		defer a.slots.Release(1)
	}
	start := time.Now()
	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	defer conn.Close()

	log := a.logger.With(zap.String("remote_addr", raw.RemoteAddr().String()))
	log.Info("client connected", zap.Bool("encrypted", conn.Encrypted()))

	if err := conn.Negotiate(); err != nil {
		log.Error("telnet negotiation failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-a.quit:
			cancel()
			_ = conn.Close()
		case <-ctx.Done():
		}
	}()

	if err := a.handler.HandleSession(ctx, conn); err != nil {
		log.Debug("session ended", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return
	}
	log.Info("session ended cleanly", zap.Duration("duration", time.Since(start)))
}

// Stop closes the listener, ends every session and waits for their
// goroutines to exit. Calling Stop on an idle acceptor does nothing.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return
	}
	a.running = false

	close(a.quit)
	if a.listener != nil {
		_ = a.listener.Close()
	}
	a.sessions.Wait()
	a.logger.Info("telnet acceptor stopped")
}

// Addr returns the bound address, or "" before ListenAndServe has bound.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// IsRunning reports whether the acceptor is accepting clients.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}
