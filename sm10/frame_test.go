package sm10

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	frame, err := Encode(CmdReadPosition, 1, []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x16, 0x01, 0x01, 0x01, 0x01, 0x10, 0x21}, frame)
}

func TestEncode_LengthInvariant(t *testing.T) {
	payload := []byte{0x01, 0x0A}

	_, err := Encode(CmdSetStepResolution, len(payload), payload)
	assert.NoError(t, err)

	for _, declared := range []int{len(payload) - 1, len(payload) + 1} {
		_, err := Encode(CmdSetStepResolution, declared, payload)
		require.Error(t, err)
		encErr, ok := err.(*EncodingError)
		require.True(t, ok, "want *EncodingError, got %T", err)
		assert.Equal(t, declared, encErr.Declared)
		assert.Equal(t, len(payload), encErr.Actual)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	cases := []struct {
		id      CommandID
		payload []byte
	}{
		{CmdReadPosition, []byte{0x01}},
		{CmdStep, []byte{0x01, 0x84}},
		{CmdGroupStop, []byte{0xA0, 0, 0, 0, 0, 0, 0, 0, 0, 7}},
		{CmdApproachAbsFast, append([]byte{0x01}, EncodeFloat(123.45)...)},
	}

	for _, c := range cases {
		frame, err := Encode(c.id, len(c.payload), c.payload)
		require.NoError(t, err)

		id, payload, err := Decode(frame)
		require.NoError(t, err)
		assert.Equal(t, c.id, id)
		assert.Equal(t, c.payload, payload)
	}
}

func TestDecode_RejectsCorruptChecksum(t *testing.T) {
	frame, err := Encode(CmdStop, 1, []byte{0x01})
	require.NoError(t, err)
	frame[len(frame)-1] ^= 0xFF

	_, _, err = Decode(frame)
	assert.Error(t, err)
}

func TestValidateResponse(t *testing.T) {
	assert.NoError(t, ValidateResponse(CmdStop, []byte{0x06, 0x00, 0xFF, 0x00}))

	err := ValidateResponse(CmdStop, []byte{0x06, 0x01, 0x01, 0x00})
	require.Error(t, err)
	respErr, ok := err.(*UnexpectedResponseError)
	require.True(t, ok)
	assert.Equal(t, []byte{0x06, 0x00, 0xFF}, respErr.Expected)
	assert.Equal(t, []byte{0x06, 0x01, 0x01}, respErr.Actual)

	assert.Error(t, ValidateResponse(CmdStop, []byte{0x06}))
}

func TestFloatRoundTrip(t *testing.T) {
	b := EncodeFloat(123.45)
	assert.Equal(t, []byte{0x66, 0xE6, 0xF6, 0x42}, b)
	assert.InEpsilon(t, 123.45, float64(DecodeFloat(b)), 1e-6)

	assert.Equal(t, float32(-512.25), DecodeFloat(EncodeFloat(-512.25)))
}
