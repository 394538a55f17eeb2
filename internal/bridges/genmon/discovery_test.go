package genmon

import (
	"bytes"
	"encoding/json"
	"testing"
)

func testDevice() Device {
	return Device{
		ID:           "Genmon_Generator",
		Name:         "Generator",
		Manufacturer: "GenMon",
		Origin:       "Generator Monitor",
	}
}

func TestEncodeSensor(t *testing.T) {
	e := NewEncoder("homeassistant")
	d := EntityDescriptor{
		ID:            "genmon_generator_status_batteryvoltage",
		Name:          "Status Batteryvoltage",
		Component:     "sensor",
		Kind:          ValueNumeric,
		Unit:          "V",
		DeviceClass:   "voltage",
		ValueTemplate: "{{ value }}",
		StateTopic:    "generator/status/batteryvoltage",
	}

	msg, err := e.Encode(testDevice(), d)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	wantTopic := "homeassistant/sensor/Genmon_Generator/genmon_generator_status_batteryvoltage/config"
	if msg.Topic != wantTopic {
		t.Errorf("Topic = %q, want %q", msg.Topic, wantTopic)
	}
	if !msg.Retain {
		t.Error("discovery configs must be retained")
	}

	var body map[string]any
	if err := json.Unmarshal(msg.Payload, &body); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	checks := map[string]string{
		"name":                "Status Batteryvoltage",
		"unique_id":           "genmon_generator_status_batteryvoltage",
		"object_id":           "genmon_generator_status_batteryvoltage",
		"state_topic":         "generator/status/batteryvoltage",
		"unit_of_measurement": "V",
		"device_class":        "voltage",
		"value_template":      "{{ value }}",
	}
	for key, want := range checks {
		if got, _ := body[key].(string); got != want {
			t.Errorf("payload[%q] = %q, want %q", key, got, want)
		}
	}

	if _, ok := body["command_topic"]; ok {
		t.Error("sensor payload must not carry command_topic")
	}

	device, _ := body["device"].(map[string]any)
	if device == nil {
		t.Fatal("payload missing device block")
	}
	ids, _ := device["identifiers"].([]any)
	if len(ids) != 1 || ids[0] != "Genmon_Generator" {
		t.Errorf("device identifiers = %v, want [Genmon_Generator]", ids)
	}

	origin, _ := body["origin"].(map[string]any)
	if origin == nil {
		t.Fatal("payload missing origin block")
	}
	if got, _ := origin["support_url"].(string); got != supportURL {
		t.Errorf("origin support_url = %q, want %q", got, supportURL)
	}
}

func TestEncodeButton(t *testing.T) {
	e := NewEncoder("homeassistant")
	d := EntityDescriptor{
		ID:           "genmon_generator__stop",
		Name:         "Stop Generator",
		Component:    "button",
		CommandTopic: "genmon-bridge/press/stop",
		PressPayload: "generator: stop",
	}

	msg, err := e.Encode(testDevice(), d)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	wantTopic := "homeassistant/button/Genmon_Generator/genmon_generator__stop/config"
	if msg.Topic != wantTopic {
		t.Errorf("Topic = %q, want %q", msg.Topic, wantTopic)
	}

	var body map[string]any
	if err := json.Unmarshal(msg.Payload, &body); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if got, _ := body["command_topic"].(string); got != "genmon-bridge/press/stop" {
		t.Errorf("command_topic = %q, want %q", got, "genmon-bridge/press/stop")
	}
	if got, _ := body["payload_press"].(string); got != "generator: stop" {
		t.Errorf("payload_press = %q, want %q", got, "generator: stop")
	}
	if _, ok := body["state_topic"]; ok {
		t.Error("button payload must not carry state_topic")
	}
}

func TestEncodeDeterministic(t *testing.T) {
	e := NewEncoder("homeassistant")
	dev := testDevice()
	d := EntityDescriptor{
		ID:         "genmon_generator_status_temp",
		Name:       "Status Temp",
		Component:  "sensor",
		Kind:       ValueNumeric,
		Unit:       "°C",
		StateTopic: "generator/status/temp",
	}

	first, err := e.Encode(dev, d)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	second, err := e.Encode(dev, d)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	if !bytes.Equal(first.Payload, second.Payload) {
		t.Error("encoding the same inputs twice must yield identical payloads")
	}
	if first.Topic != second.Topic {
		t.Errorf("topics differ: %q vs %q", first.Topic, second.Topic)
	}
}

func TestEncodeOmitsEmptyMetadata(t *testing.T) {
	e := NewEncoder("homeassistant")
	d := EntityDescriptor{
		ID:         "genmon_generator_status_state",
		Name:       "Status State",
		Component:  "sensor",
		Kind:       ValueText,
		StateTopic: "generator/status/state",
	}

	msg, err := e.Encode(testDevice(), d)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(msg.Payload, &body); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	for _, key := range []string{"unit_of_measurement", "device_class", "value_template", "command_topic", "payload_press"} {
		if _, ok := body[key]; ok {
			t.Errorf("payload must omit empty %q", key)
		}
	}
}

func TestEncodeCarriesEnrichedDevice(t *testing.T) {
	e := NewEncoder("homeassistant")
	dev := testDevice()
	dev.Model = "Evolution 2.0"
	dev.SerialNumber = "123456789"
	dev.SWVersion = "V1.18.Q"

	msg, err := e.Encode(dev, EntityDescriptor{
		ID:         "genmon_generator_status_state",
		Name:       "Status State",
		Component:  "sensor",
		StateTopic: "generator/status/state",
	})
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	var body struct {
		Device devicePayload `json:"device"`
	}
	if err := json.Unmarshal(msg.Payload, &body); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if body.Device.Model != "Evolution 2.0" {
		t.Errorf("device model = %q, want %q", body.Device.Model, "Evolution 2.0")
	}
	if body.Device.SerialNumber != "123456789" {
		t.Errorf("device serial = %q, want %q", body.Device.SerialNumber, "123456789")
	}
	if body.Device.SWVersion != "V1.18.Q" {
		t.Errorf("device sw_version = %q, want %q", body.Device.SWVersion, "V1.18.Q")
	}
}
