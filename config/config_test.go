package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnlab/lnremote/transport"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadSocket(t *testing.T) {
	path := writeFile(t, `
[MANIPULATOR]
connection = socket
ip = 192.168.1.42
port = 1001
read_timeout = 500ms

[SERVER]
addr = :9090
poll_interval = 1s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "socket", cfg.Manipulator.Connection)
	assert.Equal(t, 500*time.Millisecond, cfg.Manipulator.ReadTimeout)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, time.Second, cfg.Server.PollInterval)

	tc := cfg.Transport()
	assert.Equal(t, transport.KindSocket, tc.Kind)
	assert.Equal(t, "192.168.1.42:1001", tc.Addr)
}

func TestLoadSerial(t *testing.T) {
	path := writeFile(t, `
[MANIPULATOR]
connection = serial
serial = AB0KT4L8
baudrate = 38400
strict = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "AB0KT4L8", cfg.Manipulator.SerialNumber)
	assert.Equal(t, 38400, cfg.Manipulator.BaudRate)
	assert.True(t, cfg.Manipulator.Strict)

	tc := cfg.Transport()
	assert.Equal(t, transport.KindSerial, tc.Kind)
	assert.Equal(t, 38400, tc.BaudRate)
}

func TestLoadRejectsUnknownConnection(t *testing.T) {
	path := writeFile(t, "[MANIPULATOR]\nconnection = pigeon\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadSocketNeedsIP(t *testing.T) {
	path := writeFile(t, "[MANIPULATOR]\nconnection = socket\n")
	_, err := Load(path)
	require.Error(t, err)
}
