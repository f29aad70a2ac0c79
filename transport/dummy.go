package transport

import (
	"sync"
	"time"

	"github.com/lnlab/lnremote/sm10"
)

// Dummy accepts every write and synthesizes the acknowledgment the real
// control box would send, so UI work and tests can run without hardware.
type Dummy struct {
	mu     sync.Mutex
	writes [][]byte
	closed bool
}

var _ Transport = (*Dummy)(nil)

func NewDummy() *Dummy {
	return &Dummy{}
}

func (d *Dummy) Write(p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	frame := make([]byte, len(p))
	copy(frame, p)
	d.writes = append(d.writes, frame)
	return nil
}

// ReadExact answers with ACK plus the echoed command id of the last
// write, zero-padded to the requested size.
func (d *Dummy) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	resp := make([]byte, n)
	if len(d.writes) > 0 {
		if id, _, err := sm10.Decode(d.writes[len(d.writes)-1]); err == nil {
			copy(resp, sm10.ResponsePrefix(id))
		}
	}
	return resp, nil
}

func (d *Dummy) Flush() error { return nil }

func (d *Dummy) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Writes returns every frame written so far, in order.
func (d *Dummy) Writes() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.writes))
	copy(out, d.writes)
	return out
}
