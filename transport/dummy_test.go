package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnlab/lnremote/sm10"
)

func TestDummy_EchoesLastCommand(t *testing.T) {
	d := NewDummy()

	frame, err := sm10.Encode(sm10.CmdReadPosition, 1, []byte{0x01})
	require.NoError(t, err)
	require.NoError(t, d.Write(frame))

	resp, err := d.ReadExact(8, time.Millisecond)
	require.NoError(t, err)
	assert.Len(t, resp, 8)
	assert.NoError(t, sm10.ValidateResponse(sm10.CmdReadPosition, resp))

	writes := d.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, frame, writes[0])
}

func TestDummy_ReadBeforeWrite(t *testing.T) {
	d := NewDummy()
	resp, err := d.ReadExact(4, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, resp)
}
