package sm10

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalog_Consistency(t *testing.T) {
	for id, cmd := range Catalog {
		assert.Equal(t, id, cmd.ID, "catalog key %s", id)
		assert.True(t, cmd.Payload > 0, "command %s has empty payload", id)
		assert.True(t, cmd.Response >= 0, "command %s", id)
	}
}

func TestCatalog_SpotChecks(t *testing.T) {
	// Position query: ACK + id + length + one float32.
	assert.Equal(t, 8, Lookup(CmdReadPosition).Response)
	// Group position query: ACK + id + length + 4 axis bytes + 4 floats + CRC.
	assert.Equal(t, 26, Lookup(CmdGroupReadPositions).Response)
	// Approach: axis byte + float32 target.
	assert.Equal(t, 5, Lookup(CmdApproachAbsFast).Payload)
	// Group step: flag + 9-byte address + velocity + float32 distance.
	assert.Equal(t, 15, Lookup(CmdGroupStepPositive).Payload)
	// Step commands are fire-and-forget.
	assert.Equal(t, 0, Lookup(CmdStep).Response)
	assert.Equal(t, 0, Lookup(CmdSetStepResolution).Response)
}

func TestLookup_PanicsOnUnknown(t *testing.T) {
	assert.Panics(t, func() { Lookup(CommandID(0xBEEF)) })
}
