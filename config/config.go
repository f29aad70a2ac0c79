// Package config loads the lnremote configuration file. The file uses
// ini syntax; every key has a default so an empty or missing file yields
// a working dummy-transport setup.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	ini "gopkg.in/ini.v1"

	"github.com/lnlab/lnremote/transport"
)

// Config is the parsed configuration.
type Config struct {
	Manipulator Manipulator
	Server      Server
}

// Manipulator configures the device connection.
type Manipulator struct {
	// Connection is "serial", "socket" or "dummy".
	Connection string
	// SerialNumber identifies the USB serial adapter of the control box.
	SerialNumber string
	BaudRate     int
	// IP and Port locate the TCP gateway for socket connections.
	IP   string
	Port int
	// ReadTimeout bounds a single response read.
	ReadTimeout time.Duration
	// Strict makes response validation failures fatal.
	Strict bool
	Debug  bool
}

// Server configures the HTTP API.
type Server struct {
	Addr string
	// PollInterval is the cadence of the position stream.
	PollInterval time.Duration
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Manipulator: Manipulator{
			Connection:  string(transport.KindDummy),
			BaudRate:    115200,
			Port:        1001,
			ReadTimeout: 200 * time.Millisecond,
		},
		Server: Server{
			Addr:         ":8080",
			PollInterval: 250 * time.Millisecond,
		},
	}
}

// Load reads path and overlays it on the defaults. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := ini.LooseLoad(path)
	if err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}

	man := f.Section("MANIPULATOR")
	cfg.Manipulator.Connection = man.Key("connection").MustString(cfg.Manipulator.Connection)
	cfg.Manipulator.SerialNumber = man.Key("serial").MustString(cfg.Manipulator.SerialNumber)
	cfg.Manipulator.BaudRate = man.Key("baudrate").MustInt(cfg.Manipulator.BaudRate)
	cfg.Manipulator.IP = man.Key("ip").MustString(cfg.Manipulator.IP)
	cfg.Manipulator.Port = man.Key("port").MustInt(cfg.Manipulator.Port)
	cfg.Manipulator.ReadTimeout = man.Key("read_timeout").MustDuration(cfg.Manipulator.ReadTimeout)
	cfg.Manipulator.Strict = man.Key("strict").MustBool(cfg.Manipulator.Strict)
	cfg.Manipulator.Debug = man.Key("debug").MustBool(cfg.Manipulator.Debug)

	srv := f.Section("SERVER")
	cfg.Server.Addr = srv.Key("addr").MustString(cfg.Server.Addr)
	cfg.Server.PollInterval = srv.Key("poll_interval").MustDuration(cfg.Server.PollInterval)

	switch transport.Kind(cfg.Manipulator.Connection) {
	case transport.KindSerial, transport.KindSocket, transport.KindDummy:
	default:
		return cfg, fmt.Errorf("config: unknown connection kind %q", cfg.Manipulator.Connection)
	}
	if cfg.Manipulator.Connection == string(transport.KindSocket) && cfg.Manipulator.IP == "" {
		return cfg, fmt.Errorf("config: socket connection needs an ip")
	}
	return cfg, nil
}

// Transport converts the manipulator section into a transport.Config.
func (c Config) Transport() transport.Config {
	return transport.Config{
		Kind:         transport.Kind(c.Manipulator.Connection),
		SerialNumber: c.Manipulator.SerialNumber,
		BaudRate:     c.Manipulator.BaudRate,
		Addr:         net.JoinHostPort(c.Manipulator.IP, strconv.Itoa(c.Manipulator.Port)),
		ReadTimeout:  c.Manipulator.ReadTimeout,
	}
}
