package manipulator

import (
	"errors"
	"fmt"

	"github.com/lnlab/lnremote/sm10"
)

// ErrNotHomed is returned by return-home operations before a home
// position has been stored, preventing a blind move to an arbitrary
// coordinate.
var ErrNotHomed = errors.New("manipulator: home position has not been stored")

// IncompleteResponseError reports a response that stayed short of the
// expected size through every read attempt and one retransmission. The
// call failed, but the transport remains usable.
type IncompleteResponseError struct {
	ID   sm10.CommandID
	Got  int
	Want int
}

func (e *IncompleteResponseError) Error() string {
	return fmt.Sprintf("manipulator: command %s: got %d/%d response bytes after retransmit", e.ID, e.Got, e.Want)
}
