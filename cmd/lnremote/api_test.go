package main

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnlab/lnremote/manipulator"
	"github.com/lnlab/lnremote/transport"
)

func TestStreamWSRelaysPollerUpdates(t *testing.T) {
	m := manipulator.New(manipulator.NewChannel(transport.NewDummy(),
		manipulator.WithReadTimeout(time.Millisecond)))
	p := manipulator.NewPoller(m, []int{1, 2, 3}, 10*time.Millisecond)
	defer p.Close()

	srv := httptest.NewServer(newAPI(m, p))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/positions"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var u manipulator.PositionUpdate
	require.NoError(t, conn.ReadJSON(&u), "websocket clients receive the shared poll stream")
	assert.Equal(t, []int{1, 2, 3}, u.Axes)
	assert.Len(t, u.Positions, 3)
}
