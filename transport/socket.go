package transport

import (
	"fmt"
	"log"
	"net"
	"time"
)

// socketTransport reaches the control box through a serial-over-TCP
// gateway. The connection is dialed lazily on first use and held open;
// gateways are often transiently busy, so dial failures are retried at a
// fixed backoff instead of failing the exchange.
type socketTransport struct {
	addr    string
	backoff time.Duration
	dialMax time.Duration

	conn net.Conn
}

func openSocket(cfg Config) (*socketTransport, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("transport: socket address not configured")
	}
	return &socketTransport{
		addr:    cfg.Addr,
		backoff: cfg.DialBackoff,
		dialMax: cfg.DialTimeout,
	}, nil
}

func (s *socketTransport) connect() error {
	if s.conn != nil {
		return nil
	}

	var start time.Time
	if s.dialMax > 0 {
		start = time.Now()
	}
	for {
		conn, err := net.DialTimeout("tcp", s.addr, s.backoff)
		if err == nil {
			log.Printf("Connected to manipulator gateway at %s.", s.addr)
			s.conn = conn
			return nil
		}
		if s.dialMax > 0 && time.Since(start) > s.dialMax {
			return fmt.Errorf("transport: connect %s: %w", s.addr, err)
		}
		log.Printf("ERROR: connect %s: %v (retrying)", s.addr, err)
		time.Sleep(s.backoff)
	}
}

// drop closes the current connection so the next exchange redials.
func (s *socketTransport) drop() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

func (s *socketTransport) Write(p []byte) error {
	if err := s.connect(); err != nil {
		return err
	}
	if _, err := s.conn.Write(p); err != nil {
		s.drop()
		return fmt.Errorf("transport: write %s: %w", s.addr, err)
	}
	return nil
}

func (s *socketTransport) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	if err := s.connect(); err != nil {
		return nil, err
	}
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, n)
	for len(buf) < n {
		chunk := make([]byte, n-len(buf))
		read, err := s.conn.Read(chunk)
		buf = append(buf, chunk[:read]...)
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				// Short read; the caller retries.
				return buf, nil
			}
			s.drop()
			return buf, fmt.Errorf("transport: read %s: %w", s.addr, err)
		}
	}
	return buf, nil
}

// Flush drains whatever the gateway has pending so a stale response can
// never be matched against the next command.
func (s *socketTransport) Flush() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return err
	}
	scratch := make([]byte, 256)
	for {
		n, err := s.conn.Read(scratch)
		if n == 0 || err != nil {
			return nil
		}
	}
}

func (s *socketTransport) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	log.Printf("Connection to manipulator gateway at %s closed.", s.addr)
	return err
}
