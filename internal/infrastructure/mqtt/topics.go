package mqtt

import "fmt"

// Topic prefixes owned by the bridge itself.
//
// Telemetry and command topics belong to the generator and are
// configured per deployment; only bridge-local topics live here.
const (
	// TopicPrefixBridge is the base for all bridge-owned topics.
	TopicPrefixBridge = "genmon-bridge"
)

// Topics provides builders for bridge-owned MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	pressTopic := topics.Press("stop")
//	// Returns: "genmon-bridge/press/stop"
type Topics struct{}

// SystemStatus returns the bridge availability topic.
//
// The bridge publishes retained online/offline status here; the broker
// publishes the LWT payload here on unexpected disconnect.
//
// Example: genmon-bridge/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixBridge)
}

// Press returns the topic a Home Assistant button publishes to when
// activated. The action segment identifies which button was pressed.
//
// Example: genmon-bridge/press/starttransfer
func (Topics) Press(action string) string {
	return fmt.Sprintf("%s/press/%s", TopicPrefixBridge, action)
}

// AllPresses returns the wildcard pattern covering all button press topics.
//
// Example: genmon-bridge/press/+
func (Topics) AllPresses() string {
	return fmt.Sprintf("%s/press/+", TopicPrefixBridge)
}

// DiscoveryConfig returns the Home Assistant discovery config topic for
// an entity.
//
// Example: homeassistant/sensor/Genmon_Generator/genmon_generator_status_temp/config
func (Topics) DiscoveryConfig(prefix, component, deviceID, entityID string) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", prefix, component, deviceID, entityID)
}
