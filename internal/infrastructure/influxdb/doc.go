// Package influxdb stores generator telemetry history in InfluxDB v2.
//
// History is optional: when the config disables it, Connect returns
// ErrDisabled and the bridge runs without it. When enabled, every
// numeric reading and each relayed command lands in the configured
// bucket, giving dashboards a long-term view that Home Assistant's
// recorder alone does not keep.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without history
//	}
//	defer client.Close()
//
//	client.WriteTelemetry("genmon_generator_status_rpm", "generator/status/rpm", 3600)
//
// Writes are batched and non-blocking (batch_size and flush_interval
// in config.yaml), so the MQTT handler path never waits on InfluxDB.
// Batch failures surface asynchronously through SetOnError; Connect
// and HealthCheck return errors directly. All methods are safe for
// concurrent use.
package influxdb
