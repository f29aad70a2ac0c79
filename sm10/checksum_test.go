package sm10

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum_ReferenceVectors(t *testing.T) {
	cases := []struct {
		payload []byte
		msb     byte
		lsb     byte
	}{
		// Standard CRC-16/CCITT (init 0) check value.
		{[]byte("123456789"), 0x31, 0xC3},
		// Axis-select payloads from the protocol manual examples.
		{[]byte{0x01}, 0x10, 0x21},
		{[]byte{0x02}, 0x20, 0x42},
		{[]byte{0x01, 0x0A}, 0x92, 0x7B},
		// Group stop payload: flag + XYZ address.
		{[]byte{0xA0, 0, 0, 0, 0, 0, 0, 0, 0, 7}, 0xAD, 0xDE},
		{nil, 0x00, 0x00},
	}

	for _, c := range cases {
		msb, lsb := Checksum(c.payload)
		assert.Equal(t, c.msb, msb, "payload % X", c.payload)
		assert.Equal(t, c.lsb, lsb, "payload % X", c.payload)
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	m1, l1 := Checksum(payload)
	m2, l2 := Checksum(payload)
	assert.Equal(t, m1, m2)
	assert.Equal(t, l1, l2)
	assert.Equal(t, byte(0xC4), m1)
	assert.Equal(t, byte(0x57), l1)
}

// A regression in one driver revision computed the checksum from the
// payload length alone. The authoritative checksum must depend on
// payload content, not just size.
func TestChecksum_ContentSensitive(t *testing.T) {
	m1, l1 := Checksum([]byte{0x01, 0x02, 0x03})
	m2, l2 := Checksum([]byte{0x01, 0x02, 0x04})
	assert.False(t, m1 == m2 && l1 == l2, "checksum must vary with content")
}
