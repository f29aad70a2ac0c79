package manipulator

import (
	"github.com/lnlab/lnremote/sm10"
)

// Group operations address several axes in one command. Most are
// broadcasts the controller does not acknowledge.

// groupPayload builds flag + packed group address + trailing bytes.
func groupPayload(addr []byte, extra ...byte) []byte {
	p := make([]byte, 0, 1+len(addr)+len(extra))
	p = append(p, sm10.GroupFlag)
	p = append(p, addr...)
	return append(p, extra...)
}

// axisList packs up to four device axes into the flag + 4 axis byte
// layout used by group reads and queries.
func axisList(axes []int) ([]byte, error) {
	if len(axes) == 0 || len(axes) > 4 {
		return nil, &sm10.ArgumentError{Name: "axes", Value: len(axes), Want: "1 through 4 axes"}
	}
	p := make([]byte, 5)
	p[0] = sm10.GroupFlag
	for i, a := range axes {
		p[1+i] = byte(a)
	}
	return p, nil
}

func (m *Manipulator) groupAddress(axes []int) ([]byte, error) {
	dev, err := m.deviceAxes(axes)
	if err != nil {
		return nil, err
	}
	return sm10.GroupAddress(dev)
}

// SwitchAxesPower switches motor power for all addressed axes.
func (m *Manipulator) SwitchAxesPower(axes []int, on bool) error {
	addr, err := m.groupAddress(axes)
	if err != nil {
		return err
	}
	id := sm10.CmdGroupPowerOff
	if on {
		id = sm10.CmdGroupPowerOn
	}
	_, err = m.ch.Send(id, groupPayload(addr))
	return err
}

// StopAxes halts movement on all addressed axes.
func (m *Manipulator) StopAxes(axes []int) error {
	addr, err := m.groupAddress(axes)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdGroupStop, groupPayload(addr))
	return err
}

// ResetAxesZero zeroes the main counters of all addressed axes.
func (m *Manipulator) ResetAxesZero(axes []int) error {
	addr, err := m.groupAddress(axes)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdGroupResetZero, groupPayload(addr))
	return err
}

// ResetAxesZero2 zeroes the secondary counters of all addressed axes.
func (m *Manipulator) ResetAxesZero2(axes []int) error {
	addr, err := m.groupAddress(axes)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdGroupResetZero2, groupPayload(addr))
	return err
}

// MoveAxesToZero moves all addressed axes to their counter zero at the
// given velocity stage.
func (m *Manipulator) MoveAxesToZero(axes []int, velocity int) error {
	if err := checkVelocity(velocity); err != nil {
		return err
	}
	addr, err := m.groupAddress(axes)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdGroupMoveToZero, groupPayload(addr, byte(velocity)))
	return err
}

// StoreAxesPosition saves the current positions of all addressed axes
// into slot 1..5.
func (m *Manipulator) StoreAxesPosition(axes []int, slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	addr, err := m.groupAddress(axes)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdGroupStoreSlot, groupPayload(addr, byte(slot)))
	return err
}

// RecallAxesPosition moves all addressed axes back to the positions in
// slot 1..5 at the given velocity stage.
func (m *Manipulator) RecallAxesPosition(axes []int, slot, velocity int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	if err := checkVelocity(velocity); err != nil {
		return err
	}
	addr, err := m.groupAddress(axes)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdGroupRecallSlot, groupPayload(addr, byte(slot), byte(velocity)))
	return err
}

// StepAxes steps all addressed axes by distance (um) in the given
// direction at the given velocity stage.
func (m *Manipulator) StepAxes(axes []int, direction int, distance float32, velocity int) error {
	if err := checkDirection(direction); err != nil {
		return err
	}
	if err := checkVelocity(velocity); err != nil {
		return err
	}
	addr, err := m.groupAddress(axes)
	if err != nil {
		return err
	}
	id := sm10.CmdGroupStepPositive
	if direction < 0 {
		id = sm10.CmdGroupStepNegative
	}
	payload := groupPayload(addr, byte(velocity))
	payload = append(payload, sm10.EncodeFloat(distance)...)
	_, err = m.ch.Send(id, payload)
	return err
}

// MoveAxesHome drives all addressed axes to their home switches at the
// given velocity stage and records that home positions exist.
func (m *Manipulator) MoveAxesHome(axes []int, velocity int) error {
	if err := checkVelocity(velocity); err != nil {
		return err
	}
	addr, err := m.groupAddress(axes)
	if err != nil {
		return err
	}
	if _, err := m.ch.Send(sm10.CmdGroupMoveHome, groupPayload(addr, byte(velocity))); err != nil {
		return err
	}
	m.mu.Lock()
	m.homed = true
	m.mu.Unlock()
	return nil
}

// ReturnAxesHome moves all addressed axes back to where they were when
// homing started. Fails with ErrNotHomed unless a homing move ran first.
func (m *Manipulator) ReturnAxesHome(axes []int, velocity int) error {
	if err := checkVelocity(velocity); err != nil {
		return err
	}
	m.mu.Lock()
	homed := m.homed
	m.mu.Unlock()
	if !homed {
		return ErrNotHomed
	}
	addr, err := m.groupAddress(axes)
	if err != nil {
		return err
	}
	if _, err := m.ch.Send(sm10.CmdGroupReturnHome, groupPayload(addr, byte(velocity))); err != nil {
		return err
	}
	m.mu.Lock()
	m.homed = false
	m.mu.Unlock()
	return nil
}

// AbortAxesHome cancels in-progress homing moves on all addressed axes.
func (m *Manipulator) AbortAxesHome(axes []int) error {
	addr, err := m.groupAddress(axes)
	if err != nil {
		return err
	}
	_, err = m.ch.Send(sm10.CmdGroupAbortHome, groupPayload(addr))
	return err
}

// ApproachAxesPosition moves up to four axes to their targets in one
// command. positions must have one entry per axis, in um.
func (m *Manipulator) ApproachAxesPosition(axes []int, mode sm10.ApproachMode, speed sm10.SpeedMode, positions []float32) error {
	if err := checkApproachMode(mode); err != nil {
		return err
	}
	if err := checkSpeedMode(speed); err != nil {
		return err
	}
	if len(positions) != len(axes) {
		return &sm10.ArgumentError{Name: "positions", Value: len(positions), Want: "one per axis"}
	}
	dev, err := m.deviceAxes(axes)
	if err != nil {
		return err
	}
	payload, err := axisList(dev)
	if err != nil {
		return err
	}
	floats := make([]byte, 0, 16)
	for _, p := range positions {
		floats = append(floats, sm10.EncodeFloat(p)...)
	}
	for len(floats) < 16 {
		floats = append(floats, 0)
	}
	payload = append(payload, floats...)

	groupApproach := map[sm10.ApproachMode]map[sm10.SpeedMode]sm10.CommandID{
		sm10.ApproachAbsolute: {
			sm10.SpeedFast: sm10.CmdGroupApproachAbsFast,
			sm10.SpeedSlow: sm10.CmdGroupApproachAbsSlow,
		},
		sm10.ApproachRelative: {
			sm10.SpeedFast: sm10.CmdGroupApproachRelFast,
			sm10.SpeedSlow: sm10.CmdGroupApproachRelSlow,
		},
	}
	_, err = m.ch.Send(groupApproach[mode][speed], payload)
	return err
}

// ReadPositions reads the main counters of up to four axes in one
// exchange, returning one value per requested axis, in request order.
func (m *Manipulator) ReadPositions(axes []int) ([]float32, error) {
	return m.readPositions(sm10.CmdGroupReadPositions, axes)
}

// ReadPositions2 reads the secondary counters of up to four axes.
func (m *Manipulator) ReadPositions2(axes []int) ([]float32, error) {
	return m.readPositions(sm10.CmdGroupReadPositions2, axes)
}

func (m *Manipulator) readPositions(id sm10.CommandID, axes []int) ([]float32, error) {
	dev, err := m.deviceAxes(axes)
	if err != nil {
		return nil, err
	}
	payload, err := axisList(dev)
	if err != nil {
		return nil, err
	}
	resp, err := m.ch.Send(id, payload)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(axes))
	for i := range out {
		out[i] = sm10.DecodeFloat(resp[8+4*i : 12+4*i])
	}
	return out, nil
}

// QueryAxesState reports the raw status byte of up to four axes, one
// per requested axis, in request order.
func (m *Manipulator) QueryAxesState(axes []int) ([]byte, error) {
	dev, err := m.deviceAxes(axes)
	if err != nil {
		return nil, err
	}
	payload, err := axisList(dev)
	if err != nil {
		return nil, err
	}
	resp, err := m.ch.Send(sm10.CmdGroupQueryState, payload)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(axes))
	copy(out, resp[8:8+len(axes)])
	return out, nil
}
