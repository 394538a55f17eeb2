package genmon

import (
	"encoding/json"
	"fmt"

	"github.com/nerrad567/genmon-bridge/internal/infrastructure/mqtt"
)

// bridgeVersion appears in the origin block of every discovery payload.
const bridgeVersion = "1.0.0" // TODO: inject from build

// supportURL points Home Assistant users at the upstream generator
// monitor project.
const supportURL = "https://github.com/jgyates/genmon"

// Device identifies the physical generator. All discovery payloads
// reference the same device block so Home Assistant groups every entity
// under one device.
type Device struct {
	ID           string
	Name         string
	Manufacturer string
	Model        string
	SerialNumber string
	SWVersion    string
	Origin       string
}

// DiscoveryMessage is one retained MQTT publish announcing an entity to
// Home Assistant. Transient: built per publish, never stored.
type DiscoveryMessage struct {
	Topic   string
	Payload []byte
	Retain  bool
}

// discoveryPayload is the Home Assistant discovery config body.
// Field order is fixed by the struct, so encoding the same inputs
// always yields byte-identical JSON. The registry's fingerprint dedup
// relies on that.
type discoveryPayload struct {
	Name              string        `json:"name"`
	UniqueID          string        `json:"unique_id"`
	ObjectID          string        `json:"object_id"`
	StateTopic        string        `json:"state_topic,omitempty"`
	UnitOfMeasurement string        `json:"unit_of_measurement,omitempty"`
	DeviceClass       string        `json:"device_class,omitempty"`
	ValueTemplate     string        `json:"value_template,omitempty"`
	CommandTopic      string        `json:"command_topic,omitempty"`
	PayloadPress      string        `json:"payload_press,omitempty"`
	Device            devicePayload `json:"device"`
	Origin            originPayload `json:"origin"`
}

type devicePayload struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Model        string   `json:"model,omitempty"`
	SerialNumber string   `json:"serial_number,omitempty"`
	SWVersion    string   `json:"sw_version,omitempty"`
}

type originPayload struct {
	Name       string `json:"name"`
	SWVersion  string `json:"sw_version"`
	SupportURL string `json:"support_url"`
}

// Encoder builds discovery messages under a fixed discovery prefix.
type Encoder struct {
	prefix string
	topics mqtt.Topics
}

// NewEncoder creates an encoder publishing under the given discovery
// prefix (conventionally "homeassistant").
func NewEncoder(prefix string) *Encoder {
	return &Encoder{prefix: prefix}
}

// Encode builds the retained discovery config message for an entity.
// The payload is deterministic given (Device, EntityDescriptor).
func (e *Encoder) Encode(dev Device, d EntityDescriptor) (DiscoveryMessage, error) {
	body := discoveryPayload{
		Name:              d.Name,
		UniqueID:          d.ID,
		ObjectID:          d.ID,
		StateTopic:        d.StateTopic,
		UnitOfMeasurement: d.Unit,
		DeviceClass:       d.DeviceClass,
		ValueTemplate:     d.ValueTemplate,
		CommandTopic:      d.CommandTopic,
		PayloadPress:      d.PressPayload,
		Device: devicePayload{
			Identifiers:  []string{dev.ID},
			Name:         dev.Name,
			Manufacturer: dev.Manufacturer,
			Model:        dev.Model,
			SerialNumber: dev.SerialNumber,
			SWVersion:    dev.SWVersion,
		},
		Origin: originPayload{
			Name:       dev.Origin,
			SWVersion:  bridgeVersion,
			SupportURL: supportURL,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return DiscoveryMessage{}, fmt.Errorf("%w: %s: %v", ErrEncodingFailed, d.ID, err)
	}

	return DiscoveryMessage{
		Topic:   e.topics.DiscoveryConfig(e.prefix, d.Component, dev.ID, d.ID),
		Payload: payload,
		Retain:  true,
	}, nil
}
