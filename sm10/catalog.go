package sm10

// SpeedMode selects between the firmware's two velocity tables.
type SpeedMode int

const (
	SpeedSlow SpeedMode = 0
	SpeedFast SpeedMode = 1
)

// ApproachMode selects how a target position is interpreted.
type ApproachMode int

const (
	ApproachAbsolute ApproachMode = 0
	ApproachRelative ApproachMode = 1
)

// Single-axis command identifiers.
const (
	CmdMoveFastPositive CommandID = 0x0012
	CmdMoveFastNegative CommandID = 0x0013
	CmdMoveSlowPositive CommandID = 0x0014
	CmdMoveSlowNegative CommandID = 0x0015

	CmdReturnHome CommandID = 0x0022
	CmdMoveToZero CommandID = 0x0024

	CmdPowerOff CommandID = 0x0034
	CmdPowerOn  CommandID = 0x0035

	CmdSetRampLength         CommandID = 0x003A
	CmdSetLinearVelocitySlow CommandID = 0x003C
	CmdSetLinearVelocityFast CommandID = 0x003D

	CmdApproachAbsFast CommandID = 0x0048
	CmdApproachAbsSlow CommandID = 0x0049
	CmdApproachRelFast CommandID = 0x004A
	CmdApproachRelSlow CommandID = 0x004B

	CmdResetZero CommandID = 0x00F0
	CmdStop      CommandID = 0x00FF

	CmdReadPosition  CommandID = 0x0101
	CmdMoveHome      CommandID = 0x0104
	CmdStoreSlot     CommandID = 0x010A
	CmdRecallSlot    CommandID = 0x0110
	CmdReadCounter2  CommandID = 0x0131
	CmdResetZero2    CommandID = 0x0132
	CmdSetMoveVelFast CommandID = 0x0134
	CmdSetMoveVelSlow CommandID = 0x0135

	CmdSetHomingVelocity CommandID = 0x0139
	CmdSetHomeDirection  CommandID = 0x013C
	CmdAbortHome         CommandID = 0x013F

	CmdStepIncrement     CommandID = 0x0140
	CmdStepDecrement     CommandID = 0x0141
	CmdSetStepResolution CommandID = 0x0146
	CmdStep              CommandID = 0x0147
	CmdSetStepVelocity   CommandID = 0x0158

	CmdSetPosVelFast     CommandID = 0x0144
	CmdSetPosVelSlow     CommandID = 0x018F
	CmdSetPosSpeedMode   CommandID = 0x0191
	CmdReadPosSpeedMode  CommandID = 0x0192

	CmdSlowRampOff CommandID = 0x042F
	CmdSlowRampOn  CommandID = 0x0430

	CmdSetStepDistance CommandID = 0x044F
)

// Group command identifiers. All address multiple axes at once; most are
// broadcasts with no response.
const (
	CmdGroupReturnHome CommandID = 0xA022
	CmdGroupMoveToZero CommandID = 0xA024

	CmdGroupPowerOff CommandID = 0xA034
	CmdGroupPowerOn  CommandID = 0xA035

	CmdGroupApproachAbsFast CommandID = 0xA048
	CmdGroupApproachAbsSlow CommandID = 0xA049
	CmdGroupApproachRelFast CommandID = 0xA04A
	CmdGroupApproachRelSlow CommandID = 0xA04B

	CmdGroupResetZero CommandID = 0xA0F0
	CmdGroupStop      CommandID = 0xA0FF

	CmdGroupReadPositions  CommandID = 0xA101
	CmdGroupMoveHome       CommandID = 0xA104
	CmdGroupStoreSlot      CommandID = 0xA10A
	CmdGroupRecallSlot     CommandID = 0xA110
	CmdGroupQueryState     CommandID = 0xA120
	CmdGroupReadPositions2 CommandID = 0xA131
	CmdGroupResetZero2     CommandID = 0xA132
	CmdGroupAbortHome      CommandID = 0xA13F

	CmdGroupStepPositive CommandID = 0xA140
	CmdGroupStepNegative CommandID = 0xA141
)

// Command describes one catalog entry: the payload byte count Encode must
// see, and the exact response size the channel reads back. Response 0
// marks a fire-and-forget broadcast.
type Command struct {
	ID       CommandID
	Payload  int
	Response int
}

// ackResponse is the 4-byte acknowledgment most single-axis commands
// return: ACK, echoed id, and a status byte.
const ackResponse = 4

// Catalog is the static table of every operation the driver issues.
var Catalog = map[CommandID]Command{
	CmdMoveFastPositive: {CmdMoveFastPositive, 1, ackResponse},
	CmdMoveFastNegative: {CmdMoveFastNegative, 1, ackResponse},
	CmdMoveSlowPositive: {CmdMoveSlowPositive, 1, ackResponse},
	CmdMoveSlowNegative: {CmdMoveSlowNegative, 1, ackResponse},

	CmdReturnHome: {CmdReturnHome, 1, ackResponse},
	CmdMoveToZero: {CmdMoveToZero, 1, ackResponse},

	CmdPowerOff: {CmdPowerOff, 1, ackResponse},
	CmdPowerOn:  {CmdPowerOn, 1, ackResponse},

	CmdSetRampLength:         {CmdSetRampLength, 2, ackResponse},
	CmdSetLinearVelocitySlow: {CmdSetLinearVelocitySlow, 3, ackResponse},
	CmdSetLinearVelocityFast: {CmdSetLinearVelocityFast, 3, ackResponse},

	CmdApproachAbsFast: {CmdApproachAbsFast, 5, ackResponse},
	CmdApproachAbsSlow: {CmdApproachAbsSlow, 5, ackResponse},
	CmdApproachRelFast: {CmdApproachRelFast, 5, ackResponse},
	CmdApproachRelSlow: {CmdApproachRelSlow, 5, ackResponse},

	CmdResetZero: {CmdResetZero, 1, ackResponse},
	CmdStop:      {CmdStop, 1, ackResponse},

	CmdReadPosition: {CmdReadPosition, 1, 8},
	CmdMoveHome:     {CmdMoveHome, 1, ackResponse},
	CmdStoreSlot:    {CmdStoreSlot, 2, ackResponse},
	CmdRecallSlot:   {CmdRecallSlot, 2, ackResponse},
	CmdReadCounter2: {CmdReadCounter2, 1, 8},
	CmdResetZero2:   {CmdResetZero2, 2, ackResponse},

	CmdSetMoveVelFast: {CmdSetMoveVelFast, 2, ackResponse},
	CmdSetMoveVelSlow: {CmdSetMoveVelSlow, 2, ackResponse},

	CmdSetHomingVelocity: {CmdSetHomingVelocity, 2, ackResponse},
	CmdSetHomeDirection:  {CmdSetHomeDirection, 2, ackResponse},
	CmdAbortHome:         {CmdAbortHome, 1, ackResponse},

	CmdStepIncrement:     {CmdStepIncrement, 1, ackResponse},
	CmdStepDecrement:     {CmdStepDecrement, 1, ackResponse},
	CmdSetStepResolution: {CmdSetStepResolution, 2, 0},
	CmdStep:              {CmdStep, 2, 0},
	CmdSetStepVelocity:   {CmdSetStepVelocity, 2, 0},
	CmdSetStepDistance:   {CmdSetStepDistance, 5, 0},

	CmdSetPosVelFast:    {CmdSetPosVelFast, 2, ackResponse},
	CmdSetPosVelSlow:    {CmdSetPosVelSlow, 2, ackResponse},
	CmdSetPosSpeedMode:  {CmdSetPosSpeedMode, 2, ackResponse},
	CmdReadPosSpeedMode: {CmdReadPosSpeedMode, 1, 6},

	CmdSlowRampOff: {CmdSlowRampOff, 1, ackResponse},
	CmdSlowRampOn:  {CmdSlowRampOn, 1, ackResponse},

	CmdGroupReturnHome: {CmdGroupReturnHome, 11, 0},
	CmdGroupMoveToZero: {CmdGroupMoveToZero, 11, 0},

	CmdGroupPowerOff: {CmdGroupPowerOff, 10, 0},
	CmdGroupPowerOn:  {CmdGroupPowerOn, 10, 0},

	CmdGroupApproachAbsFast: {CmdGroupApproachAbsFast, 21, 0},
	CmdGroupApproachAbsSlow: {CmdGroupApproachAbsSlow, 21, 0},
	CmdGroupApproachRelFast: {CmdGroupApproachRelFast, 21, 0},
	CmdGroupApproachRelSlow: {CmdGroupApproachRelSlow, 21, 0},

	CmdGroupResetZero: {CmdGroupResetZero, 10, 0},
	CmdGroupStop:      {CmdGroupStop, 10, 0},

	CmdGroupReadPositions:  {CmdGroupReadPositions, 5, 26},
	CmdGroupMoveHome:       {CmdGroupMoveHome, 11, 0},
	CmdGroupStoreSlot:      {CmdGroupStoreSlot, 11, 0},
	CmdGroupRecallSlot:     {CmdGroupRecallSlot, 12, 0},
	CmdGroupQueryState:     {CmdGroupQueryState, 5, 14},
	CmdGroupReadPositions2: {CmdGroupReadPositions2, 5, 26},
	CmdGroupResetZero2:     {CmdGroupResetZero2, 10, 0},
	CmdGroupAbortHome:      {CmdGroupAbortHome, 10, 0},

	CmdGroupStepPositive: {CmdGroupStepPositive, 15, 0},
	CmdGroupStepNegative: {CmdGroupStepNegative, 15, 0},
}

// Lookup returns the catalog entry for id. Issuing an uncataloged id is a
// programming error, hence the panic rather than an error return.
func Lookup(id CommandID) Command {
	cmd, ok := Catalog[id]
	if !ok {
		panic("sm10: command " + id.String() + " not in catalog")
	}
	return cmd
}
