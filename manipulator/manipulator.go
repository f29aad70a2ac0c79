package manipulator

import (
	"sync"
	"time"

	"github.com/lnlab/lnremote/sm10"
)

// velocitySettle is the pause between setting a velocity and issuing
// the move that uses it; the firmware drops the move otherwise.
const velocitySettle = 100 * time.Millisecond

// Manipulator exposes the SM10 operation surface on top of a Channel.
// Axis numbers are 1..4 relative to the selected unit; SelectUnit maps
// them onto device axes 5..8 for the second manipulator.
type Manipulator struct {
	ch *Channel

	mu    sync.Mutex
	unit  int
	homed bool
}

// New returns a Manipulator bound to ch, addressing unit 1.
func New(ch *Channel) *Manipulator {
	return &Manipulator{ch: ch, unit: 1}
}

// SelectUnit switches which of the two manipulator units subsequent
// axis numbers refer to.
func (m *Manipulator) SelectUnit(unit int) error {
	if unit < 1 || unit > 2 {
		return &sm10.ArgumentError{Name: "unit", Value: unit, Want: "1 or 2"}
	}
	m.mu.Lock()
	m.unit = unit
	m.mu.Unlock()
	return nil
}

// Unit reports the currently selected unit.
func (m *Manipulator) Unit() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unit
}

// Close releases the underlying channel and transport.
func (m *Manipulator) Close() error {
	return m.ch.Close()
}

// axisByte validates axis and maps it onto the device axis for the
// selected unit.
func (m *Manipulator) axisByte(axis int) (byte, error) {
	if axis < 1 || axis > 4 {
		return 0, &sm10.ArgumentError{Name: "axis", Value: axis, Want: "1 through 4"}
	}
	m.mu.Lock()
	unit := m.unit
	m.mu.Unlock()
	return byte(axis + 4*(unit-1)), nil
}

// deviceAxes maps unit-relative axes onto device axes.
func (m *Manipulator) deviceAxes(axes []int) ([]int, error) {
	m.mu.Lock()
	unit := m.unit
	m.mu.Unlock()
	out := make([]int, len(axes))
	for i, a := range axes {
		if a < 1 || a > 4 {
			return nil, &sm10.ArgumentError{Name: "axis", Value: a, Want: "1 through 4"}
		}
		out[i] = a + 4*(unit-1)
	}
	return out, nil
}

func checkVelocity(v int) error {
	if v <= 0 || v >= 16 {
		return &sm10.ArgumentError{Name: "velocity", Value: v, Want: "1 through 15"}
	}
	return nil
}

func checkSlot(slot int) error {
	if slot < 1 || slot > 5 {
		return &sm10.ArgumentError{Name: "slot", Value: slot, Want: "1 through 5"}
	}
	return nil
}

func checkDirection(d int) error {
	if d != 1 && d != -1 {
		return &sm10.ArgumentError{Name: "direction", Value: d, Want: "1 or -1"}
	}
	return nil
}

func checkSpeedMode(s sm10.SpeedMode) error {
	if s != sm10.SpeedSlow && s != sm10.SpeedFast {
		return &sm10.ArgumentError{Name: "speed", Value: int(s), Want: "SpeedSlow or SpeedFast"}
	}
	return nil
}

func checkApproachMode(a sm10.ApproachMode) error {
	if a != sm10.ApproachAbsolute && a != sm10.ApproachRelative {
		return &sm10.ArgumentError{Name: "mode", Value: int(a), Want: "ApproachAbsolute or ApproachRelative"}
	}
	return nil
}

// Stepping

// StepAxis moves axis by steps at the given resolution. Positive steps
// go forward, negative back; both sub-commands run as one exchange so
// another caller cannot change the resolution in between.
func (m *Manipulator) StepAxis(axis, steps, resolution int) error {
	if steps <= -127 || steps >= 127 {
		return &sm10.ArgumentError{Name: "steps", Value: steps, Want: "-126 through 126"}
	}
	if resolution <= 0 || resolution >= 255 {
		return &sm10.ArgumentError{Name: "resolution", Value: resolution, Want: "1 through 254"}
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	return m.ch.batch(func(send sendFunc) error {
		if _, err := send(sm10.CmdSetStepResolution, []byte{ax, byte(resolution)}); err != nil {
			return err
		}
		time.Sleep(settleDelay)
		_, err := send(sm10.CmdStep, []byte{ax, byte(steps + 127)})
		return err
	})
}

// SingleStep moves axis one step in the given direction using the
// configured step distance and velocity.
func (m *Manipulator) SingleStep(axis, direction int) error {
	if err := checkDirection(direction); err != nil {
		return err
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	id := sm10.CmdStepIncrement
	if direction < 0 {
		id = sm10.CmdStepDecrement
	}
	_, err = m.ch.Send(id, []byte{ax})
	return err
}

// SingleStepAt sets the step distance and velocity for axis and then
// steps once in the given direction, as one exchange.
func (m *Manipulator) SingleStepAt(axis, direction int, distance float32, velocity int) error {
	if err := checkDirection(direction); err != nil {
		return err
	}
	if err := checkVelocity(velocity); err != nil {
		return err
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	stepCmd := sm10.CmdStepIncrement
	if direction < 0 {
		stepCmd = sm10.CmdStepDecrement
	}
	return m.ch.batch(func(send sendFunc) error {
		payload := append([]byte{ax}, sm10.EncodeFloat(distance)...)
		if _, err := send(sm10.CmdSetStepDistance, payload); err != nil {
			return err
		}
		time.Sleep(settleDelay)
		if _, err := send(sm10.CmdSetStepVelocity, []byte{ax, byte(velocity)}); err != nil {
			return err
		}
		time.Sleep(settleDelay)
		_, err := send(stepCmd, []byte{ax})
		return err
	})
}

// SetStepDistance sets the single-step distance for axis, in um.
func (m *Manipulator) SetStepDistance(axis int, distance float32) error {
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	payload := append([]byte{ax}, sm10.EncodeFloat(distance)...)
	_, err = m.ch.Send(sm10.CmdSetStepDistance, payload)
	return err
}

// SetStepVelocity sets the single-step velocity stage for axis.
func (m *Manipulator) SetStepVelocity(axis, velocity int) error {
	if err := checkVelocity(velocity); err != nil {
		return err
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdSetStepVelocity, []byte{ax, byte(velocity)})
	return err
}

// Continuous movement

var moveCommands = map[sm10.SpeedMode]map[int]sm10.CommandID{
	sm10.SpeedFast: {1: sm10.CmdMoveFastPositive, -1: sm10.CmdMoveFastNegative},
	sm10.SpeedSlow: {1: sm10.CmdMoveSlowPositive, -1: sm10.CmdMoveSlowNegative},
}

// MoveAxis starts continuous movement of axis in the given direction at
// the configured velocity for the speed mode.
func (m *Manipulator) MoveAxis(axis int, speed sm10.SpeedMode, direction int) error {
	if err := checkSpeedMode(speed); err != nil {
		return err
	}
	if err := checkDirection(direction); err != nil {
		return err
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(moveCommands[speed][direction], []byte{ax})
	return err
}

// MoveAxisAt sets the movement velocity for the speed mode and then
// starts the move, as one exchange.
func (m *Manipulator) MoveAxisAt(axis int, speed sm10.SpeedMode, direction, velocity int) error {
	if err := checkSpeedMode(speed); err != nil {
		return err
	}
	if err := checkDirection(direction); err != nil {
		return err
	}
	if err := checkVelocity(velocity); err != nil {
		return err
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	velCmd := sm10.CmdSetMoveVelSlow
	if speed == sm10.SpeedFast {
		velCmd = sm10.CmdSetMoveVelFast
	}
	return m.ch.batch(func(send sendFunc) error {
		if _, err := send(velCmd, []byte{ax, byte(velocity)}); err != nil {
			return err
		}
		time.Sleep(velocitySettle)
		_, err := send(moveCommands[speed][direction], []byte{ax})
		return err
	})
}

// SetMovementVelocity sets the continuous-movement velocity stage for
// the given speed mode.
func (m *Manipulator) SetMovementVelocity(axis int, speed sm10.SpeedMode, velocity int) error {
	if err := checkSpeedMode(speed); err != nil {
		return err
	}
	if err := checkVelocity(velocity); err != nil {
		return err
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	id := sm10.CmdSetMoveVelSlow
	if speed == sm10.SpeedFast {
		id = sm10.CmdSetMoveVelFast
	}
	_, err = m.ch.Send(id, []byte{ax, byte(velocity)})
	return err
}

// StopAxis halts any movement on axis.
func (m *Manipulator) StopAxis(axis int) error {
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdStop, []byte{ax})
	return err
}

// Positioning

var approachCommands = map[sm10.ApproachMode]map[sm10.SpeedMode]sm10.CommandID{
	sm10.ApproachAbsolute: {
		sm10.SpeedFast: sm10.CmdApproachAbsFast,
		sm10.SpeedSlow: sm10.CmdApproachAbsSlow,
	},
	sm10.ApproachRelative: {
		sm10.SpeedFast: sm10.CmdApproachRelFast,
		sm10.SpeedSlow: sm10.CmdApproachRelSlow,
	},
}

// ApproachPosition moves axis to position (um), absolute or relative,
// at the configured positioning velocity for the speed mode.
func (m *Manipulator) ApproachPosition(axis int, mode sm10.ApproachMode, speed sm10.SpeedMode, position float32) error {
	if err := checkApproachMode(mode); err != nil {
		return err
	}
	if err := checkSpeedMode(speed); err != nil {
		return err
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	payload := append([]byte{ax}, sm10.EncodeFloat(position)...)
	_, err = m.ch.Send(approachCommands[mode][speed], payload)
	return err
}

// ApproachPositionAt sets the positioning velocity for the speed mode
// and then approaches, as one exchange.
func (m *Manipulator) ApproachPositionAt(axis int, mode sm10.ApproachMode, speed sm10.SpeedMode, position float32, velocity int) error {
	if err := checkApproachMode(mode); err != nil {
		return err
	}
	if err := checkSpeedMode(speed); err != nil {
		return err
	}
	if err := checkVelocity(velocity); err != nil {
		return err
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	velCmd := sm10.CmdSetPosVelSlow
	if speed == sm10.SpeedFast {
		velCmd = sm10.CmdSetPosVelFast
	}
	payload := append([]byte{ax}, sm10.EncodeFloat(position)...)
	return m.ch.batch(func(send sendFunc) error {
		if _, err := send(velCmd, []byte{ax, byte(velocity)}); err != nil {
			return err
		}
		time.Sleep(velocitySettle)
		_, err := send(approachCommands[mode][speed], payload)
		return err
	})
}

// SetPositioningSpeedMode sets whether positioning moves on axis use the
// slow or fast velocity table.
func (m *Manipulator) SetPositioningSpeedMode(axis int, speed sm10.SpeedMode) error {
	if err := checkSpeedMode(speed); err != nil {
		return err
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdSetPosSpeedMode, []byte{ax, byte(speed)})
	return err
}

// ReadPositioningSpeedMode reads back the positioning speed mode of axis.
func (m *Manipulator) ReadPositioningSpeedMode(axis int) (sm10.SpeedMode, error) {
	ax, err := m.axisByte(axis)
	if err != nil {
		return 0, err
	}
	resp, err := m.ch.Send(sm10.CmdReadPosSpeedMode, []byte{ax})
	if err != nil {
		return 0, err
	}
	return sm10.SpeedMode(resp[4]), nil
}

// SetPositioningVelocity sets the positioning velocity stage for the
// given speed mode.
func (m *Manipulator) SetPositioningVelocity(axis int, speed sm10.SpeedMode, velocity int) error {
	if err := checkSpeedMode(speed); err != nil {
		return err
	}
	if err := checkVelocity(velocity); err != nil {
		return err
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	id := sm10.CmdSetPosVelSlow
	if speed == sm10.SpeedFast {
		id = sm10.CmdSetPosVelFast
	}
	_, err = m.ch.Send(id, []byte{ax, byte(velocity)})
	return err
}

// SetPositioningVelocityLinear sets the positioning velocity in linear
// units: usteps/s for slow mode (up to 3000), and mrev/min for fast
// mode (up to 18000).
func (m *Manipulator) SetPositioningVelocityLinear(axis int, speed sm10.SpeedMode, velocity int) error {
	if err := checkSpeedMode(speed); err != nil {
		return err
	}
	limit := 3000
	id := sm10.CmdSetLinearVelocitySlow
	if speed == sm10.SpeedFast {
		limit = 18000
		id = sm10.CmdSetLinearVelocityFast
	}
	if velocity <= 0 || velocity >= limit {
		return &sm10.ArgumentError{Name: "velocity", Value: velocity, Want: "positive and below the mode limit"}
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(id, []byte{ax, byte(velocity >> 8), byte(velocity)})
	return err
}

// Position slots

// StorePosition saves the current position of axis into slot 1..5.
func (m *Manipulator) StorePosition(axis, slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdStoreSlot, []byte{ax, byte(slot)})
	return err
}

// RecallPosition moves axis back to the position saved in slot 1..5.
func (m *Manipulator) RecallPosition(axis, slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdRecallSlot, []byte{ax, byte(slot)})
	return err
}

// Power and ramps

// SwitchAxisPower switches the motor power of axis on or off.
func (m *Manipulator) SwitchAxisPower(axis int, on bool) error {
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	id := sm10.CmdPowerOff
	if on {
		id = sm10.CmdPowerOn
	}
	_, err = m.ch.Send(id, []byte{ax})
	return err
}

// SwitchSlowRamp switches the slow acceleration ramp of axis on or off.
func (m *Manipulator) SwitchSlowRamp(axis int, on bool) error {
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	id := sm10.CmdSlowRampOff
	if on {
		id = sm10.CmdSlowRampOn
	}
	_, err = m.ch.Send(id, []byte{ax})
	return err
}

// SetRampLength sets the acceleration ramp length of axis, stages 1..15.
func (m *Manipulator) SetRampLength(axis, length int) error {
	if length <= 0 || length >= 16 {
		return &sm10.ArgumentError{Name: "length", Value: length, Want: "1 through 15"}
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdSetRampLength, []byte{ax, byte(length)})
	return err
}

// Homing

// MoveHome drives axis to its hardware home switch and records that a
// home position exists, enabling ReturnAxisHome.
func (m *Manipulator) MoveHome(axis int) error {
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	if _, err := m.ch.Send(sm10.CmdMoveHome, []byte{ax}); err != nil {
		return err
	}
	m.mu.Lock()
	m.homed = true
	m.mu.Unlock()
	return nil
}

// MoveHomeAt sets the homing velocity and direction for axis and then
// starts the homing move, as one exchange.
func (m *Manipulator) MoveHomeAt(axis, velocity, direction int) error {
	if err := checkVelocity(velocity); err != nil {
		return err
	}
	if err := checkDirection(direction); err != nil {
		return err
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	d := byte(1)
	if direction < 0 {
		d = 0
	}
	err = m.ch.batch(func(send sendFunc) error {
		if _, err := send(sm10.CmdSetHomingVelocity, []byte{ax, byte(velocity)}); err != nil {
			return err
		}
		time.Sleep(settleDelay)
		if _, err := send(sm10.CmdSetHomeDirection, []byte{ax, d}); err != nil {
			return err
		}
		time.Sleep(settleDelay)
		_, err := send(sm10.CmdMoveHome, []byte{ax})
		return err
	})
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.homed = true
	m.mu.Unlock()
	return nil
}

// SetHomingVelocity sets the velocity stage used by homing moves.
func (m *Manipulator) SetHomingVelocity(axis, velocity int) error {
	if err := checkVelocity(velocity); err != nil {
		return err
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdSetHomingVelocity, []byte{ax, byte(velocity)})
	return err
}

// SetHomeDirection sets which direction axis homes in.
func (m *Manipulator) SetHomeDirection(axis, direction int) error {
	if err := checkDirection(direction); err != nil {
		return err
	}
	d := byte(1)
	if direction < 0 {
		d = 0
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdSetHomeDirection, []byte{ax, d})
	return err
}

// ReturnAxisHome moves axis back to the position it left when homing
// started. Fails with ErrNotHomed unless MoveHome ran first.
func (m *Manipulator) ReturnAxisHome(axis int) error {
	m.mu.Lock()
	homed := m.homed
	m.mu.Unlock()
	if !homed {
		return ErrNotHomed
	}
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	if _, err := m.ch.Send(sm10.CmdReturnHome, []byte{ax}); err != nil {
		return err
	}
	m.mu.Lock()
	m.homed = false
	m.mu.Unlock()
	return nil
}

// AbortHome cancels an in-progress homing move on axis.
func (m *Manipulator) AbortHome(axis int) error {
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdAbortHome, []byte{ax})
	return err
}

// Counters and zero

// ResetZero zeroes the main position counter of axis.
func (m *Manipulator) ResetZero(axis int) error {
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdResetZero, []byte{ax})
	return err
}

// ResetZero2 zeroes the secondary position counter of axis. The second
// payload byte selects counter 2.
func (m *Manipulator) ResetZero2(axis int) error {
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdResetZero2, []byte{ax, 2})
	return err
}

// MoveToZero moves axis to the zero of its main counter.
func (m *Manipulator) MoveToZero(axis int) error {
	ax, err := m.axisByte(axis)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdMoveToZero, []byte{ax})
	return err
}

// ReadPosition reads the main position counter of axis, in um.
func (m *Manipulator) ReadPosition(axis int) (float32, error) {
	ax, err := m.axisByte(axis)
	if err != nil {
		return 0, err
	}
	resp, err := m.ch.Send(sm10.CmdReadPosition, []byte{ax})
	if err != nil {
		return 0, err
	}
	return sm10.DecodeFloat(resp[4:8]), nil
}

// ReadCounter2 reads the secondary position counter of axis, in um.
func (m *Manipulator) ReadCounter2(axis int) (float32, error) {
	ax, err := m.axisByte(axis)
	if err != nil {
		return 0, err
	}
	resp, err := m.ch.Send(sm10.CmdReadCounter2, []byte{ax})
	if err != nil {
		return 0, err
	}
	return sm10.DecodeFloat(resp[4:8]), nil
}
