package flw

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/flwd/keeperd/internal/keeper"
)

const (
	defaultReadTimeout  = 5 * time.Second
	defaultWriteTimeout = 5 * time.Second
)

// Server accepts administrative connections and runs the one-shot command
// protocol on each: read exactly four bytes, classify the code against the
// registry, write the command's response, close. There is no session and no
// pipelining; one command per connection.
type Server struct {
	registry *Registry
	stats    *keeper.ServerStats
	conns    *keeper.ConnTable
	log      *zap.SugaredLogger

	readTimeout  time.Duration
	writeTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
	closed   atomic.Bool
}

// NewServer wires a sealed registry to the dispatcher's shared counters.
// The stats block and connection table may be the dispatcher's own, so the
// admin surface shows up in cons/stat listings and in the packet counters.
func NewServer(registry *Registry, d *keeper.Dispatcher, log *zap.SugaredLogger) *Server {
	return &Server{
		registry:     registry,
		stats:        d.Stats(),
		conns:        d.Conns(),
		log:          log,
		readTimeout:  defaultReadTimeout,
		writeTimeout: defaultWriteTimeout,
	}
}

// ListenAndServe binds addr and serves until Close.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("admin listener bind failed: %w", err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until the listener is closed. Each
// connection is handled on its own goroutine; handlers only share the
// immutable registry and the dispatcher's atomic counters, so they need no
// further coordination.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.log.Infow("admin listener started", "address", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || s.closed.Load() {
				return nil
			}
			s.log.Errorw("accept failed", "error", err)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Close stops accepting connections and waits for in-flight handlers.
func (s *Server) Close() error {
	s.closed.Store(true)
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	remoteAddr := conn.RemoteAddr().String()
	tracked := s.conns.Open(remoteAddr)
	defer s.conns.Close(tracked)

	_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))

	var buf [4]byte
	if _, err := io.ReadFull(conn, buf[:]); err != nil {
		if err != io.EOF {
			s.log.Debugw("short command read", "remote_addr", remoteAddr, "error", err)
		}
		return
	}

	start := time.Now()
	code := int32(binary.BigEndian.Uint32(buf[:]))
	s.stats.IncPacketsReceived()
	tracked.RecordReceived()

	name, response := s.dispatch(code)
	elapsed := uint64(time.Since(start).Milliseconds())

	_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if _, err := io.WriteString(conn, response); err != nil {
		s.log.Debugw("response write failed", "remote_addr", remoteAddr, "command", name, "error", err)
		return
	}

	s.stats.IncPacketsSent()
	s.stats.RecordLatency(elapsed)
	tracked.RecordSent()
	tracked.RecordOperation(name, elapsed)

	s.log.Debugw("command served", "remote_addr", remoteAddr, "command", name)
}

// dispatch classifies the received code. A known but disabled code runs the
// reserved not-whitelisted command; an unregistered code gets a one-line
// advisory so interactive callers see why the connection closed.
func (s *Server) dispatch(code int32) (name, response string) {
	if !s.registry.IsKnown(code) {
		name = ToName(code)
		return name, strconv.Quote(name) + " is an unknown command\n"
	}
	if !s.registry.IsEnabled(code) {
		cmd := s.registry.Get(nopCode)
		return cmd.Name(), cmd.Run()
	}
	cmd := s.registry.Get(code)
	return cmd.Name(), cmd.Run()
}

var nopCode = MustCode("nopc")
