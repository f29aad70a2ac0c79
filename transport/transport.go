// Package transport provides the byte channels the driver speaks over:
// a physical serial port, a TCP socket gateway, or an in-memory dummy for
// development without hardware.
package transport

import (
	"errors"
	"fmt"
	"time"
)

// ErrDeviceNotFound is returned when no enumerated serial port carries
// the configured hardware serial number.
var ErrDeviceNotFound = errors.New("transport: manipulator not found, is it connected?")

// Kind selects a transport implementation.
type Kind string

const (
	KindSerial Kind = "serial"
	KindSocket Kind = "socket"
	KindDummy  Kind = "dummy"
)

// Config carries everything needed to open a transport. It is supplied by
// the configuration loader; the driver itself never reads files.
type Config struct {
	Kind Kind

	// Serial transport.
	SerialNumber string
	BaudRate     int

	// Socket transport.
	Addr string
	// DialBackoff is the pause between connect attempts to a busy
	// gateway. DialTimeout bounds the whole dial loop; zero retries
	// indefinitely.
	DialBackoff time.Duration
	DialTimeout time.Duration

	// ReadTimeout bounds a single ReadExact call.
	ReadTimeout time.Duration
}

const (
	defaultBaudRate    = 115200
	defaultReadTimeout = 200 * time.Millisecond
	defaultDialBackoff = 150 * time.Millisecond
)

func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = defaultBaudRate
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = defaultReadTimeout
	}
	if c.DialBackoff == 0 {
		c.DialBackoff = defaultDialBackoff
	}
	return c
}

// A Transport is a blocking byte channel to one control box. It is not
// safe for concurrent use; the command channel serializes access.
type Transport interface {
	// Write sends the full frame or fails.
	Write(p []byte) error
	// ReadExact reads up to n bytes, returning what arrived when the
	// timeout elapses. Short reads are not errors; the caller decides
	// how to retry.
	ReadExact(n int, timeout time.Duration) ([]byte, error)
	// Flush discards anything buffered in either direction.
	Flush() error
	Close() error
}

// Open constructs the transport selected by cfg.Kind.
func Open(cfg Config) (Transport, error) {
	cfg = cfg.withDefaults()
	switch cfg.Kind {
	case KindSerial:
		return openSerial(cfg)
	case KindSocket:
		return openSocket(cfg)
	case KindDummy:
		return NewDummy(), nil
	default:
		return nil, fmt.Errorf("transport: unknown kind %q", cfg.Kind)
	}
}
