package transport

import (
	"fmt"
	"log"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// serialTransport talks to a control box over a USB serial adapter,
// located by its hardware serial number rather than a device path so the
// configuration survives port renumbering.
type serialTransport struct {
	port serial.Port
	name string
}

func openSerial(cfg Config) (*serialTransport, error) {
	name, err := findPort(cfg.SerialNumber)
	if err != nil {
		return nil, err
	}

	// serial.Mode carries no write timeout; frames are a handful of
	// bytes, and Write reports short writes instead.
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", name, err)
	}
	log.Printf("Connected to manipulator on %s at %d baud.", name, cfg.BaudRate)

	return &serialTransport{port: port, name: name}, nil
}

// findPort matches the configured serial number against the enumerated
// ports.
func findPort(serialNumber string) (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("transport: enumerate ports: %w", err)
	}
	for _, p := range ports {
		if p.IsUSB && p.SerialNumber == serialNumber {
			return p.Name, nil
		}
	}
	return "", fmt.Errorf("%w (serial %q)", ErrDeviceNotFound, serialNumber)
}

func (s *serialTransport) Write(p []byte) error {
	n, err := s.port.Write(p)
	if err != nil {
		return fmt.Errorf("transport: write %s: %w", s.name, err)
	}
	if n != len(p) {
		return fmt.Errorf("transport: short write on %s: %d/%d bytes", s.name, n, len(p))
	}
	return nil
}

func (s *serialTransport) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	if err := s.port.SetReadTimeout(timeout); err != nil {
		return nil, fmt.Errorf("transport: set read timeout: %w", err)
	}

	buf := make([]byte, 0, n)
	deadline := time.Now().Add(timeout)
	for len(buf) < n && time.Now().Before(deadline) {
		chunk := make([]byte, n-len(buf))
		read, err := s.port.Read(chunk)
		if err != nil {
			return buf, fmt.Errorf("transport: read %s: %w", s.name, err)
		}
		if read == 0 {
			// Port timeout with nothing buffered: hand back the
			// short read.
			break
		}
		buf = append(buf, chunk[:read]...)
	}
	return buf, nil
}

func (s *serialTransport) Flush() error {
	if err := s.port.ResetInputBuffer(); err != nil {
		return err
	}
	return s.port.ResetOutputBuffer()
}

func (s *serialTransport) Close() error {
	err := s.port.Close()
	log.Printf("Connection to manipulator on %s closed.", s.name)
	return err
}
