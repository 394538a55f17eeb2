package influxdb

import "errors"

// Sentinel errors, checked with errors.Is. ErrDisabled in particular
// is expected at startup when the operator runs without telemetry
// history; the bridge continues without it.
var (
	ErrNotConnected     = errors.New("influxdb: not connected")
	ErrConnectionFailed = errors.New("influxdb: connection failed")
	ErrDisabled         = errors.New("influxdb: disabled in configuration")
)
