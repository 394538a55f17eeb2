// Package config loads, defaults, and validates the bridge's YAML
// configuration: broker connection, device identity, discovery prefix,
// telemetry topics, SQLite path, and the optional InfluxDB section.
//
// Environment variables override file values for secrets, so broker
// passwords and tokens can stay out of the YAML. The file itself
// should be 0600. Configuration loads once at startup; nothing is
// re-read at runtime.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
