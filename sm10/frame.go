// Package sm10 implements the Luigs & Neumann SM10 wire protocol:
// frame encoding with CRC-16 checksums, group address packing, and the
// command catalog. It performs no I/O.
package sm10

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// SYN marks the start of an outbound command frame.
	SYN = 0x16
	// ACK is the first byte of every response frame.
	ACK = 0x06

	// GroupFlag is the first payload byte of every group command.
	GroupFlag = 0xA0
)

// CommandID is the 16-bit command identifier, written on the wire as two
// bytes (four hex digits in the protocol manual).
type CommandID uint16

func (id CommandID) String() string { return fmt.Sprintf("%04X", uint16(id)) }

// EncodingError reports a frame whose declared payload length does not
// match the bytes actually supplied. It is raised before any transport
// I/O: a frame with a wrong length byte cannot be recovered mid-flight.
type EncodingError struct {
	ID       CommandID
	Declared int
	Actual   int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("sm10: command %s declares %d payload bytes, got %d", e.ID, e.Declared, e.Actual)
}

// UnexpectedResponseError reports a response whose leading bytes do not
// echo the command that was sent.
type UnexpectedResponseError struct {
	Expected []byte
	Actual   []byte
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("sm10: expected response prefix % X, got % X", e.Expected, e.Actual)
}

// Encode builds the raw command frame:
//
//	SYN | id MSB | id LSB | payload length | payload | CRC MSB | CRC LSB
//
// declared must equal len(payload); the catalog supplies it independently
// so that a miscounted entry fails here instead of on the device.
func Encode(id CommandID, declared int, payload []byte) ([]byte, error) {
	if declared != len(payload) {
		return nil, &EncodingError{ID: id, Declared: declared, Actual: len(payload)}
	}
	frame := make([]byte, 0, 4+len(payload)+2)
	frame = append(frame, SYN, byte(id>>8), byte(id))
	frame = append(frame, byte(len(payload)))
	frame = append(frame, payload...)
	msb, lsb := Checksum(payload)
	frame = append(frame, msb, lsb)
	return frame, nil
}

// Decode parses a frame produced by Encode, verifying the SYN marker, the
// declared length, and the checksum.
func Decode(frame []byte) (CommandID, []byte, error) {
	if len(frame) < 6 {
		return 0, nil, fmt.Errorf("sm10: frame too short: %d bytes", len(frame))
	}
	if frame[0] != SYN {
		return 0, nil, fmt.Errorf("sm10: bad start byte 0x%02X", frame[0])
	}
	id := CommandID(uint16(frame[1])<<8 | uint16(frame[2]))
	n := int(frame[3])
	if len(frame) != 4+n+2 {
		return 0, nil, &EncodingError{ID: id, Declared: n, Actual: len(frame) - 6}
	}
	payload := frame[4 : 4+n]
	msb, lsb := Checksum(payload)
	if frame[4+n] != msb || frame[5+n] != lsb {
		return 0, nil, fmt.Errorf("sm10: checksum mismatch on command %s", id)
	}
	return id, payload, nil
}

// ResponsePrefix returns the bytes every response to id must begin with.
func ResponsePrefix(id CommandID) []byte {
	return []byte{ACK, byte(id >> 8), byte(id)}
}

// ValidateResponse checks that resp echoes the command it answers.
// A mismatch is reported as an *UnexpectedResponseError; whether that is
// fatal is the caller's policy.
func ValidateResponse(id CommandID, resp []byte) error {
	want := ResponsePrefix(id)
	if len(resp) < len(want) {
		return &UnexpectedResponseError{Expected: want, Actual: resp}
	}
	for i, b := range want {
		if resp[i] != b {
			return &UnexpectedResponseError{Expected: want, Actual: resp[:len(want)]}
		}
	}
	return nil
}

// EncodeFloat renders a position in the layout the firmware expects:
// IEEE-754 single precision, little-endian.
func EncodeFloat(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}

// DecodeFloat is the inverse of EncodeFloat.
func DecodeFloat(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
