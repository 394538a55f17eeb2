package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteTelemetry records one numeric generator reading. The point is
// tagged with the Home Assistant entity ID and the source MQTT topic,
// so dashboards can query either way. Non-blocking; the point joins
// the current batch and is dropped silently when disconnected.
func (c *Client) WriteTelemetry(entityID string, topic string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"telemetry",
		map[string]string{
			"entity_id": entityID,
			"topic":     topic,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCommandEvent records a relayed generator command (start, stop,
// starttransfer). Commands are rare next to telemetry, but keeping
// them in the same bucket lets dashboards overlay operator actions on
// generator behaviour.
func (c *Client) WriteCommandEvent(action string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"commands",
		map[string]string{
			"action": action,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
