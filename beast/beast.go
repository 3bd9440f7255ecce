// Package beast fans decoded Mode S frames out to TCP clients in the
// AVR ASCII wire format: one line per message, "*<hex>;\n", lowercase
// hex of the 7 or 14 raw message bytes. It is the output-side mirror of
// the same hex framing an rtl_adsb-style client parses on ingest.
package beast

import (
	"encoding/hex"
	"errors"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultAddr is the default bind address for the fan-out server.
const DefaultAddr = "127.0.0.1:30002"

// Server accepts TCP clients and broadcasts AVR-framed frames to all of
// them. AcceptPending is non-blocking so it can be polled once per
// hot-loop iteration alongside demodulation, matching the
// single-threaded cooperative scheduling the rest of the pipeline uses.
type Server struct {
	log *logrus.Logger

	mu      sync.Mutex
	ln      *net.TCPListener
	clients map[net.Conn]struct{}
}

// NewServer creates a fan-out server bound to addr. The listener is
// created immediately but accepting new clients only happens via
// AcceptPending, keeping the hot loop non-blocking.
func NewServer(addr string, log *logrus.Logger) (*Server, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}
	ln, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, err
	}
	return &Server{
		log:     log,
		ln:      ln,
		clients: make(map[net.Conn]struct{}),
	}, nil
}

// Addr returns the address the listener is bound to.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// AcceptPending accepts at most one waiting connection without blocking.
// Call this once per hot-loop iteration after fanning out a batch of
// frames, per the pipeline's cooperative scheduling.
func (s *Server) AcceptPending() {
	if err := s.ln.SetDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return
	}
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()
	s.log.WithField("remote", conn.RemoteAddr()).Info("beast client connected")
}

// Broadcast encodes raw as an AVR line and writes it to every connected
// client. A client whose write fails with a connection reset, or because
// the connection is already closed, is dropped silently; other write
// failures are logged and the client is dropped.
func (s *Server) Broadcast(raw []byte) {
	line := encodeAVR(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if _, err := c.Write(line); err != nil {
			if !isConnReset(err) {
				s.log.WithError(err).Warn("beast client write failed")
			}
			delete(s.clients, c)
			c.Close()
		}
	}
}

// ClientCount returns the number of currently connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close shuts the listener and all connected clients down.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.Close()
		delete(s.clients, c)
	}
	return s.ln.Close()
}

// encodeAVR renders raw message bytes (7 or 14 of them) as the AVR line
// format: "*" + lowercase hex + ";\n".
func encodeAVR(raw []byte) []byte {
	out := make([]byte, 0, len(raw)*2+3)
	out = append(out, '*')
	enc := make([]byte, hex.EncodedLen(len(raw)))
	hex.Encode(enc, raw)
	out = append(out, enc...)
	out = append(out, ';', '\n')
	return out
}

func isConnReset(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, syscall.ECONNRESET)
}
