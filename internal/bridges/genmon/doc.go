// Package genmon implements the generator monitor bridge for Home
// Assistant.
//
// The bridge watches the telemetry stream a GenMon installation
// publishes over MQTT and announces each data point to Home Assistant
// via the MQTT discovery convention, plus three fixed buttons for
// remote generator control.
//
// # Architecture
//
// The bridge sits between two MQTT conversations on the same broker:
//
//	┌─────────────┐          ┌─────────────────┐          ┌────────────────┐
//	│   GenMon    │   MQTT   │  GenMon Bridge  │   MQTT   │ Home Assistant │
//	│  (monitor)  │◄────────►│   (this pkg)    │◄────────►│                │
//	└─────────────┘          └─────────────────┘          └────────────────┘
//
// # Key Responsibilities
//
//   - Subscribe to the generator telemetry wildcard topic
//   - Classify each telemetry topic into a sensor entity with inferred
//     unit, device class, and value kind
//   - Publish retained discovery configs, exactly once per distinct
//     entity fingerprint
//   - Announce the start, stop, and start-and-transfer buttons at
//     startup and relay their presses to the generator command topic
//   - Enrich the shared device block from model, serial number, and
//     firmware version telemetry
//
// # Idempotence
//
// Telemetry topics repeat indefinitely and MQTT delivers at least once.
// The Registry keys entities by an ID derived purely from the topic
// suffix and compares a fingerprint of the discovery-relevant fields
// against the last published one, so duplicate deliveries and retained
// replays never produce duplicate discovery publishes. A fingerprint is
// committed only after a successful publish.
//
// # Thread Safety
//
// All exported types are safe for concurrent use from multiple
// goroutines. The MQTT client keeps paho's default ordered delivery,
// so telemetry and press callbacks arrive serialized on the client's
// router goroutine; the locks cover everything else that touches
// shared state, such as device enrichment and startup publishes.
//
// # References
//
//   - GenMon: https://github.com/jgyates/genmon
//   - Home Assistant MQTT discovery: https://www.home-assistant.io/integrations/mqtt/#mqtt-discovery
package genmon
