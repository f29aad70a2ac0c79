package manipulator

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnlab/lnremote/sm10"
)

// fakeTransport scripts reads and records every operation in order.
type fakeTransport struct {
	mu      sync.Mutex
	ops     []string
	writes  [][]byte
	respond func(read int, n int) []byte
	echo    bool
}

func (f *fakeTransport) Write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "write")
	f.writes = append(f.writes, append([]byte(nil), p...))
	return nil
}

func (f *fakeTransport) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	read := 0
	for _, op := range f.ops {
		if op == "read" {
			read++
		}
	}
	f.ops = append(f.ops, "read")
	if f.echo && len(f.writes) > 0 {
		id, _, err := sm10.Decode(f.writes[len(f.writes)-1])
		if err != nil {
			return nil, err
		}
		resp := make([]byte, n)
		copy(resp, sm10.ResponsePrefix(id))
		return resp, nil
	}
	if f.respond == nil {
		return nil, nil
	}
	return f.respond(read, n), nil
}

func (f *fakeTransport) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "flush")
	return nil
}

func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) counts() (writes, reads int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, op := range f.ops {
		switch op {
		case "write":
			writes++
		case "read":
			reads++
		}
	}
	return
}

func (f *fakeTransport) writtenIDs(t *testing.T) []sm10.CommandID {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]sm10.CommandID, 0, len(f.writes))
	for _, w := range f.writes {
		id, _, err := sm10.Decode(w)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestSendRetryBound(t *testing.T) {
	ft := &fakeTransport{}
	c := NewChannel(ft, WithReadTimeout(time.Millisecond))

	_, err := c.Send(sm10.CmdReadPosition, []byte{1})
	require.Error(t, err)
	var incomplete *IncompleteResponseError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, sm10.CmdReadPosition, incomplete.ID)
	assert.Equal(t, 0, incomplete.Got)
	assert.Equal(t, 8, incomplete.Want)

	writes, reads := ft.counts()
	assert.Equal(t, 2, writes, "original transmission plus one retransmit")
	assert.Equal(t, 6, reads, "five attempts plus one after retransmit")
}

func TestSendAssemblesChunkedResponse(t *testing.T) {
	full := []byte{sm10.ACK, 0x01, 0x01, 0x04, 0x66, 0xE6, 0xF6, 0x42}
	ft := &fakeTransport{
		respond: func(read, n int) []byte {
			switch read {
			case 0:
				return full[:3]
			case 1:
				return full[3:]
			}
			return nil
		},
	}
	c := NewChannel(ft, WithReadTimeout(time.Millisecond))

	resp, err := c.Send(sm10.CmdReadPosition, []byte{1})
	require.NoError(t, err)
	require.Len(t, resp, 8)
	assert.InDelta(t, 123.45, sm10.DecodeFloat(resp[4:8]), 0.001)

	writes, reads := ft.counts()
	assert.Equal(t, 1, writes)
	assert.Equal(t, 2, reads)
}

func TestSendBroadcastSkipsRead(t *testing.T) {
	ft := &fakeTransport{}
	c := NewChannel(ft)

	resp, err := c.Send(sm10.CmdStep, []byte{1, 137})
	require.NoError(t, err)
	assert.Nil(t, resp)

	writes, reads := ft.counts()
	assert.Equal(t, 1, writes)
	assert.Equal(t, 0, reads)

	ft.mu.Lock()
	defer ft.mu.Unlock()
	assert.Equal(t, []string{"write", "flush"}, ft.ops,
		"buffers are cleared even when no response is read")
}

func TestSendValidationPolicy(t *testing.T) {
	bad := []byte{0x15, 0x01, 0x01, 0x04, 0, 0, 0, 0}
	newFake := func() *fakeTransport {
		return &fakeTransport{
			respond: func(read, n int) []byte { return bad[:n] },
		}
	}

	t.Run("lenient returns the bytes", func(t *testing.T) {
		c := NewChannel(newFake(), WithReadTimeout(time.Millisecond))
		resp, err := c.Send(sm10.CmdReadPosition, []byte{1})
		require.NoError(t, err)
		assert.Equal(t, bad, resp)
	})

	t.Run("strict fails", func(t *testing.T) {
		c := NewChannel(newFake(), WithReadTimeout(time.Millisecond), WithStrictValidation())
		_, err := c.Send(sm10.CmdReadPosition, []byte{1})
		var unexpected *sm10.UnexpectedResponseError
		require.ErrorAs(t, err, &unexpected)
	})
}

func TestSendMutualExclusion(t *testing.T) {
	ft := &fakeTransport{echo: true}
	c := NewChannel(ft, WithReadTimeout(time.Millisecond))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Send(sm10.CmdReadPosition, []byte{1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Every exchange must complete its reads before the next write
	// starts.
	ft.mu.Lock()
	defer ft.mu.Unlock()
	sawRead := true
	for _, op := range ft.ops {
		switch op {
		case "write":
			require.True(t, sawRead, "write interleaved into another exchange")
			sawRead = false
		case "read":
			sawRead = true
		}
	}
}

func TestBatchHoldsChannel(t *testing.T) {
	ft := &fakeTransport{echo: true}
	c := NewChannel(ft)

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.batch(func(send sendFunc) error {
			if _, err := send(sm10.CmdSetStepResolution, []byte{1, 50}); err != nil {
				return err
			}
			close(started)
			time.Sleep(50 * time.Millisecond)
			_, err := send(sm10.CmdStep, []byte{1, 137})
			return err
		})
	}()

	<-started
	_, err := c.Send(sm10.CmdStop, []byte{1})
	require.NoError(t, err)
	<-done

	ids := ft.writtenIDs(t)
	require.Len(t, ids, 3)
	assert.Equal(t, []sm10.CommandID{sm10.CmdSetStepResolution, sm10.CmdStep, sm10.CmdStop}, ids,
		"a command issued mid-batch must wait for the batch to finish")
}
