// Package manipulator drives Luigs & Neumann SM10 controllers over a
// transport.Transport. Channel owns the request/response exchange and
// Manipulator exposes the motion and query operations on top of it.
package manipulator

import (
	"log"
	"sync"
	"time"

	"github.com/lnlab/lnremote/sm10"
	"github.com/lnlab/lnremote/transport"
)

// ValidationPolicy decides what happens when a response arrives with
// the wrong ACK or command echo.
type ValidationPolicy int

const (
	// Lenient logs the mismatch and hands the bytes to the caller.
	Lenient ValidationPolicy = iota
	// Strict fails the call.
	Strict
)

const (
	// readAttempts bounds the reads before the one retransmission.
	readAttempts = 5
	// settleDelay gives the controller time to assemble a reply.
	settleDelay = 10 * time.Millisecond
)

// Channel serializes command exchanges on a transport. All methods are
// safe for concurrent use; each exchange runs to completion before the
// next may start.
type Channel struct {
	tr          transport.Transport
	policy      ValidationPolicy
	readTimeout time.Duration

	mu sync.Mutex
}

// ChannelOption configures a Channel at construction.
type ChannelOption func(*Channel)

// WithStrictValidation makes response-prefix mismatches fail the call
// instead of being logged.
func WithStrictValidation() ChannelOption {
	return func(c *Channel) { c.policy = Strict }
}

// WithReadTimeout overrides the per-read timeout used while collecting
// a response.
func WithReadTimeout(d time.Duration) ChannelOption {
	return func(c *Channel) { c.readTimeout = d }
}

// NewChannel wraps tr in a serialized command channel.
func NewChannel(tr transport.Transport, opts ...ChannelOption) *Channel {
	c := &Channel{
		tr:          tr,
		policy:      Lenient,
		readTimeout: 200 * time.Millisecond,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Send transmits one command and returns its response payload bytes,
// holding the channel for the whole exchange.
func (c *Channel) Send(id sm10.CommandID, payload []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send(id, payload)
}

// sendFunc is handed to batch callbacks so composite commands can issue
// sub-commands without re-acquiring the channel.
type sendFunc func(id sm10.CommandID, payload []byte) ([]byte, error)

// batch runs fn while holding the channel, so a multi-command sequence
// cannot be interleaved with commands from other goroutines.
func (c *Channel) batch(fn func(send sendFunc) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.send)
}

// Close releases the underlying transport.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tr.Close()
}

func (c *Channel) send(id sm10.CommandID, payload []byte) ([]byte, error) {
	cmd := sm10.Lookup(id)
	frame, err := sm10.Encode(id, cmd.Payload, payload)
	if err != nil {
		return nil, err
	}
	if err := c.tr.Write(frame); err != nil {
		return nil, err
	}
	if cmd.Response == 0 {
		// Broadcast-style command, the controller stays silent. Still
		// clear the buffers so a stale byte cannot be taken for the
		// next command's response.
		if err := c.tr.Flush(); err != nil {
			log.Printf("ERROR: flush after command %s: %v", id, err)
		}
		return nil, nil
	}
	time.Sleep(settleDelay)

	resp := make([]byte, 0, cmd.Response)
	for attempt := 0; attempt < readAttempts && len(resp) < cmd.Response; attempt++ {
		chunk, err := c.tr.ReadExact(cmd.Response-len(resp), c.readTimeout)
		if err != nil {
			return nil, err
		}
		resp = append(resp, chunk...)
	}
	if len(resp) < cmd.Response {
		// One retransmission. Whatever partial bytes we collected are
		// stale once the command goes out again, so start over.
		log.Printf("ERROR: command %s: %d/%d response bytes, retransmitting", id, len(resp), cmd.Response)
		if err := c.tr.Flush(); err != nil {
			return nil, err
		}
		if err := c.tr.Write(frame); err != nil {
			return nil, err
		}
		time.Sleep(settleDelay)
		resp, err = c.tr.ReadExact(cmd.Response, c.readTimeout)
		if err != nil {
			return nil, err
		}
		if len(resp) < cmd.Response {
			c.tr.Flush()
			return nil, &IncompleteResponseError{ID: id, Got: len(resp), Want: cmd.Response}
		}
	}

	if err := sm10.ValidateResponse(id, resp); err != nil {
		if c.policy == Strict {
			c.tr.Flush()
			return nil, err
		}
		log.Printf("ERROR: command %s: %v", id, err)
	}
	if err := c.tr.Flush(); err != nil {
		log.Printf("ERROR: flush after command %s: %v", id, err)
	}
	return resp, nil
}
