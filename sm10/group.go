package sm10

import (
	"fmt"

	funk "github.com/thoas/go-funk"
)

// GroupAddressLen is the size of the packed multi-axis address field.
const GroupAddressLen = 9

// ArgumentError reports an argument outside the range a command accepts.
// It is always raised before any encoding or transport work.
type ArgumentError struct {
	Name  string
	Value int
	Want  string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("sm10: %s %d out of range, want %s", e.Name, e.Value, e.Want)
}

// Canonical unit-1 group addresses, as listed in the protocol manual.
// They fall out of the general packing rule in GroupAddress; the tests
// pin them against these documented constants.
var (
	GroupAddressXYZ = [GroupAddressLen]byte{0, 0, 0, 0, 0, 0, 0, 0, 7}
	GroupAddressXY  = [GroupAddressLen]byte{0, 0, 0, 0, 0, 0, 0, 0, 3}
	GroupAddressXZ  = [GroupAddressLen]byte{0, 0, 0, 0, 0, 0, 0, 0, 5}
	GroupAddressYZ  = [GroupAddressLen]byte{0, 0, 0, 0, 0, 0, 0, 0, 6}
)

// GroupAddress packs a set of axis numbers into the 9-byte multi-axis
// address consumed by group commands. Axis n contributes weight
// 1<<((n-1)%4) to byte 8-(n-1)/4: axes 1-4 (unit 1) fill the last byte,
// axes 5-8 (unit 2) the one before it.
//
// Only combinations of unit-1 axes 1-3 appear in the protocol manual;
// second-unit addresses follow the same rule but are unverified against
// hardware. Anything outside 1..8 is rejected rather than extrapolated.
func GroupAddress(axes []int) ([]byte, error) {
	if len(axes) == 0 {
		return nil, &ArgumentError{Name: "axes", Value: 0, Want: "at least one axis"}
	}
	addr := make([]byte, GroupAddressLen)
	seen := make([]int, 0, len(axes))
	for _, axis := range axes {
		if axis < 1 || axis > 8 {
			return nil, &ArgumentError{Name: "axis", Value: axis, Want: "1..8"}
		}
		if funk.Contains(seen, axis) {
			return nil, &ArgumentError{Name: "axis", Value: axis, Want: "no duplicates"}
		}
		seen = append(seen, axis)
		addr[GroupAddressLen-1-(axis-1)/4] |= 1 << uint((axis-1)%4)
	}
	return addr, nil
}
