package genmon

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValueKind is the inferred type of a telemetry value.
type ValueKind int

const (
	// ValueText is the default kind for anything that is not recognisably
	// numeric or boolean, including malformed payloads.
	ValueText ValueKind = iota

	// ValueNumeric covers payloads that parse as a decimal number.
	ValueNumeric

	// ValueBoolean covers 0/1 payloads and recognisable boolean text.
	ValueBoolean
)

// String returns the kind name for logging.
func (k ValueKind) String() string {
	switch k {
	case ValueNumeric:
		return "numeric"
	case ValueBoolean:
		return "boolean"
	default:
		return "text"
	}
}

// EntityDescriptor describes one Home Assistant entity: a telemetry
// sensor derived from a topic, or one of the fixed command buttons.
type EntityDescriptor struct {
	// ID uniquely identifies the entity. For sensors it is derived from
	// the topic suffix alone, so repeated messages on the same topic
	// always map back to the same entity.
	ID string

	// Name is the human-readable label shown in Home Assistant.
	Name string

	// Component is the Home Assistant component type: "sensor" for
	// telemetry, "button" for commands.
	Component string

	// Kind is the inferred value type.
	Kind ValueKind

	// Unit is the unit of measurement, if one was inferred. Empty for
	// plain sensors and buttons.
	Unit string

	// DeviceClass is the Home Assistant device class, if one was
	// inferred. Empty for plain sensors and buttons.
	DeviceClass string

	// ValueTemplate is the Jinja template Home Assistant applies to the
	// raw payload to produce the entity state. Set for sensors only.
	ValueTemplate string

	// StateTopic is the telemetry topic the entity reads its value from.
	// Empty for buttons.
	StateTopic string

	// CommandTopic is the topic Home Assistant publishes to when a
	// button is pressed. Set for buttons only.
	CommandTopic string

	// PressPayload is the literal string published on CommandTopic when
	// the button is pressed. Set for buttons only.
	PressPayload string
}

// Fingerprint summarises the discovery-relevant fields of a descriptor.
// Two descriptors with equal fingerprints produce identical discovery
// payloads, so re-publishing is only needed when the fingerprint changes.
func (d EntityDescriptor) Fingerprint() string {
	return d.Name + "|" + d.Unit + "|" + d.DeviceClass + "|" + d.ValueTemplate + "|" + d.Kind.String()
}

// unitRule maps a topic suffix keyword to display metadata.
// Rules are checked in order against the normalised suffix; the first
// match wins.
type unitRule struct {
	keyword     string
	unit        string
	deviceClass string
}

var unitRules = []unitRule{
	{keyword: "temp", unit: "°C", deviceClass: "temperature"},
	{keyword: "volt", unit: "V", deviceClass: "voltage"},
	{keyword: "amp", unit: "A", deviceClass: "current"},
	{keyword: "frequency", unit: "Hz", deviceClass: "frequency"},
	{keyword: "hz", unit: "Hz", deviceClass: "frequency"},
	{keyword: "rpm", unit: "RPM"},
	{keyword: "hours", unit: "h", deviceClass: "duration"},
	{keyword: "runtime", unit: "h", deviceClass: "duration"},
	{keyword: "percent", unit: "%"},
	{keyword: "fuel", unit: "%"},
	{keyword: "capacity", unit: "%"},
	{keyword: "watt", unit: "W", deviceClass: "power"},
	{keyword: "power", unit: "W", deviceClass: "power"},
}

// booleanWords are payloads treated as boolean beyond plain "0"/"1".
var booleanWords = map[string]bool{
	"true": true, "false": true,
	"on": true, "off": true,
	"yes": true, "no": true,
}

// Classifier turns a raw telemetry topic suffix and payload into an
// EntityDescriptor. It is a pure function of its inputs: no I/O, no
// state, and it never fails. Unclassifiable input falls back to a plain
// text sensor so the entity is still discoverable.
type Classifier struct {
	deviceID        string
	telemetryPrefix string
}

// NewClassifier creates a classifier for the given device. Entity IDs
// are prefixed with the normalised device ID; state topics are built
// under telemetryPrefix.
func NewClassifier(deviceID, telemetryPrefix string) *Classifier {
	return &Classifier{
		deviceID:        deviceID,
		telemetryPrefix: telemetryPrefix,
	}
}

// Classify builds a sensor descriptor for a telemetry message.
//
// The entity ID depends only on the topic suffix, never on the payload,
// so an entity keeps its identity even when the value type changes
// between messages. A type change shows up as a fingerprint change
// instead.
func (c *Classifier) Classify(suffix string, payload []byte) EntityDescriptor {
	normalized := normalizeID(suffix)

	d := EntityDescriptor{
		ID:         normalizeID(c.deviceID) + "_" + normalized,
		Name:       displayName(suffix),
		Component:  "sensor",
		Kind:       ValueText,
		StateTopic: c.telemetryPrefix + "/" + suffix,
	}

	// A payload that is not valid UTF-8 cannot be inspected; keep the
	// entity as a bare text sensor with no inferred metadata.
	if !utf8.Valid(payload) {
		return d
	}

	d.Kind = classifyValue(string(payload))

	template, payloadUnit := valueTemplate(string(payload))
	d.ValueTemplate = template

	for _, rule := range unitRules {
		if strings.Contains(normalized, rule.keyword) {
			d.Unit = rule.unit
			d.DeviceClass = rule.deviceClass
			break
		}
	}

	// A unit the payload itself carries beats one guessed from the
	// topic suffix.
	if payloadUnit != "" {
		d.Unit = payloadUnit
	}

	return d
}

// Payload shapes that need a non-trivial value template.
var (
	dateInPayloadRe  = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
	numberWithUnitRe = regexp.MustCompile(`(\d+\.?\d*)\s*([a-zA-Z%]+)$`)
)

// dateTemplate extracts an M/D/YYYY date from the payload and renders
// it as YYYY-MM-DD, falling back to the raw value when the date is
// missing.
const dateTemplate = `{% set d = value | regex_findall('(\\d{1,2}/\\d{1,2}/\\d{4})') %}{% if d %}{% set p = d[0].split('/') %}{{ p[2] ~ '-' ~ '%02d' | format(p[0] | int) ~ '-' ~ '%02d' | format(p[1] | int) }}{% else %}{{ value }}{% endif %}`

// numberWithUnitTemplate strips a trailing unit from payloads such as
// "13.2 V" so the sensor state stays numeric.
const numberWithUnitTemplate = `{{ value | regex_findall('.*?(\\d+\\.?\\d*)\\s*[a-zA-Z%]+$') | first }}`

// valueTemplate builds the Jinja template for a payload, plus the unit
// when the payload itself carries one. Checks run from most to least
// specific; the fallback passes the value through untouched.
func valueTemplate(payload string) (template, unit string) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(payload), &doc); err == nil {
		if _, ok := doc["value"]; ok {
			u, _ := doc["unit"].(string)
			return "{{ value_json.value }}", u
		}
	}

	if dateInPayloadRe.MatchString(payload) {
		return dateTemplate, ""
	}

	if m := numberWithUnitRe.FindStringSubmatch(payload); m != nil {
		return numberWithUnitTemplate, m[2]
	}

	// Key-value payloads such as "Battery Check Due: OK" render the
	// portion after the separator.
	if strings.Contains(payload, ": ") {
		return "{{ value.split(': ')[1] }}", ""
	}

	return "{{ value }}", ""
}

// classifyValue infers the value kind from payload text.
func classifyValue(value string) ValueKind {
	trimmed := strings.TrimSpace(value)
	if trimmed == "0" || trimmed == "1" || booleanWords[strings.ToLower(trimmed)] {
		return ValueBoolean
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return ValueNumeric
	}
	return ValueText
}

// normalizeID lowercases a topic suffix and collapses every run of
// non-alphanumeric characters to a single underscore. The result never
// contains consecutive underscores, which is what lets command entity
// IDs use a double underscore without risk of collision.
func normalizeID(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		} else {
			pendingSep = true
		}
	}
	return b.String()
}

// displayName renders a topic suffix as a human label: segments split
// on non-alphanumeric characters, each word capitalised.
func displayName(suffix string) string {
	words := strings.FieldsFunc(suffix, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
