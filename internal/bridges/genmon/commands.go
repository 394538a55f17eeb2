package genmon

import "github.com/nerrad567/genmon-bridge/internal/infrastructure/mqtt"

// commandAction is one fixed generator control action.
type commandAction struct {
	// action names the button in topics and entity IDs.
	action string
	// name is the Home Assistant display label.
	name string
	// command is the literal string the generator monitor expects on its
	// command topic.
	command string
}

// commandActions is the full set of remote-control actions, in the
// order their discovery configs are published at startup.
var commandActions = []commandAction{
	{action: "start", name: "Start Generator", command: "generator: start"},
	{action: "stop", name: "Stop Generator", command: "generator: stop"},
	{action: "starttransfer", name: "Start and Transfer", command: "generator: starttransfer"},
}

// CommandEntities returns the descriptors for the three command buttons,
// in fixed order. Built once at startup, independent of telemetry.
//
// Button entity IDs join the device ID and action with a double
// underscore. normalizeID never produces consecutive underscores, so a
// button ID can never collide with a telemetry-derived ID.
func CommandEntities(deviceID string) []EntityDescriptor {
	topics := mqtt.Topics{}
	entities := make([]EntityDescriptor, 0, len(commandActions))
	for _, a := range commandActions {
		entities = append(entities, EntityDescriptor{
			ID:           normalizeID(deviceID) + "__" + a.action,
			Name:         a.name,
			Component:    "button",
			Kind:         ValueText,
			CommandTopic: topics.Press(a.action),
			PressPayload: a.command,
		})
	}
	return entities
}
