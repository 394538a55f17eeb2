// Package logging wraps log/slog so every component of the bridge logs
// the same way: leveled, structured key/value pairs with service and
// version attached to each entry.
//
// Format and level come from the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json for production, text for development
//	  output: "stdout"   # stdout, stderr
//
// Typical use:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("bridge started", "device_id", cfg.Device.ID)
//	logger.Error("publish failed", "topic", topic, "error", err)
//
// MQTT credentials and tokens must never appear in log fields.
package logging
