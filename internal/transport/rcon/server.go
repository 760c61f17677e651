package rcon

import (
	"crypto/subtle"
	"errors"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Handler produces the response text for one admin command.
type Handler func(command string) string

// Server is a minimal Source-RCON listener: authenticate, then answer
// exec-command packets via the Handler. One goroutine per connection;
// connections are expected to be short-lived (one command per session is
// what the engine's transport does, but longer sessions work too).
type Server struct {
	password string
	handler  Handler
	log      *log.Logger

	ln     net.Listener
	wg     sync.WaitGroup
	closed atomic.Bool
}

func NewServer(password string, h Handler, logger *log.Logger) *Server {
	return &Server{password: password, handler: h, log: logger}
}

// Listen binds addr and starts accepting in the background.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Printf("[rcon] accept: %v", err)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))
	auth, err := readPacket(conn)
	if err != nil || auth.Type != typeAuth {
		return
	}
	if subtle.ConstantTimeCompare([]byte(auth.Body), []byte(s.password)) != 1 {
		// Failed auth answers with id -1.
		_ = writePacket(conn, packet{ID: -1, Type: typeAuthResponse})
		return
	}
	if err := writePacket(conn, packet{ID: auth.ID, Type: typeAuthResponse}); err != nil {
		return
	}

	for {
		_ = conn.SetDeadline(time.Now().Add(60 * time.Second))
		req, err := readPacket(conn)
		if err != nil {
			return
		}
		if req.Type != typeExecCommand {
			continue
		}
		resp := s.handler(req.Body)
		if err := writePacket(conn, packet{ID: req.ID, Type: typeResponseValue, Body: resp}); err != nil {
			return
		}
	}
}
