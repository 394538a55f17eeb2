package genmon

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/nerrad567/genmon-bridge/internal/infrastructure/config"
	"github.com/nerrad567/genmon-bridge/internal/infrastructure/mqtt"
)

const (
	// recordTimeout bounds a single command log write.
	recordTimeout = 5 * time.Second
)

// Bridge translates generator telemetry into Home Assistant discovery
// entities and relays button presses back to the generator monitor.
//
// Telemetry flows one way: generator topic → classifier → registry →
// encoder → retained discovery publish. Commands flow the other way:
// Home Assistant press topic → fixed command string → generator command
// topic. The two flows share only the MQTT transport.
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	cfg        *config.Config
	mqtt       MQTTClient
	classifier *Classifier
	registry   *Registry
	encoder    *Encoder

	// Fixed command buttons, keyed by action for press routing.
	commands         []EntityDescriptor
	commandsByAction map[string]EntityDescriptor

	recorder  CommandRecorder   // Optional command audit log
	telemetry TelemetryRecorder // Optional telemetry history

	// Shared device identity. Telemetry on model/serial/firmware topics
	// enriches it mid-run, so reads take the lock.
	device   Device
	deviceMu sync.RWMutex

	// Shutdown coordination
	wg        sync.WaitGroup
	stopOnce  sync.Once
	ctx       context.Context
	ctxCancel context.CancelFunc

	// Logger
	logger   Logger
	loggerMu sync.RWMutex
}

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// Logger is the minimal structured logging interface the bridge needs.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// CommandRecorder persists relayed generator commands.
// It is optional - if nil, commands are relayed without an audit trail.
type CommandRecorder interface {
	// RecordCommand stores one relayed command.
	RecordCommand(ctx context.Context, action, command, pressTopic string) error
}

// TelemetryRecorder stores numeric telemetry values and command events.
// It is optional - if nil, the bridge operates without history.
type TelemetryRecorder interface {
	// RecordTelemetry stores one numeric telemetry reading.
	RecordTelemetry(entityID, topic string, value float64)

	// RecordCommandEvent counts one relayed command.
	RecordCommandEvent(action string)
}

// BridgeOptions holds configuration for creating a bridge.
type BridgeOptions struct {
	// Config is the loaded application configuration.
	Config *config.Config

	// MQTTClient is the MQTT client implementation.
	MQTTClient MQTTClient

	// Logger is optional structured logger.
	Logger Logger

	// CommandRecorder is optional command audit logging.
	// If nil, the bridge relays commands without recording them.
	CommandRecorder CommandRecorder

	// TelemetryRecorder is optional telemetry history.
	// If nil, the bridge operates without recording values.
	TelemetryRecorder TelemetryRecorder
}

// NewBridge creates a new bridge instance.
// Call Start() to begin operation.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}

	cfg := opts.Config
	ctx, ctxCancel := context.WithCancel(context.Background())

	b := &Bridge{
		cfg:        cfg,
		mqtt:       opts.MQTTClient,
		classifier: NewClassifier(cfg.Device.ID, cfg.TelemetryPrefix()),
		registry:   NewRegistry(),
		encoder:    NewEncoder(cfg.Discovery.Prefix),
		commands:   CommandEntities(cfg.Device.ID),
		recorder:   opts.CommandRecorder,  // May be nil (optional)
		telemetry:  opts.TelemetryRecorder, // May be nil (optional)
		device: Device{
			ID:           cfg.Device.ID,
			Name:         cfg.Device.Name,
			Manufacturer: cfg.Device.Manufacturer,
			Model:        cfg.Device.Model,
			Origin:       cfg.Device.Origin,
		},
		ctx:       ctx,
		ctxCancel: ctxCancel,
		logger:    opts.Logger,
	}

	b.commandsByAction = make(map[string]EntityDescriptor, len(b.commands))
	for i, a := range commandActions {
		b.commandsByAction[a.action] = b.commands[i]
	}

	return b, nil
}

// Start begins bridge operation. It publishes the command button
// discovery configs first, then subscribes to the telemetry wildcard
// and the button press topics, so the buttons are announced before any
// telemetry is processed.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.publishCommandDiscovery(); err != nil {
		return err
	}

	topics := mqtt.Topics{}
	pressTopic := topics.AllPresses()
	if err := b.mqtt.Subscribe(pressTopic, b.qos(), b.handlePress); err != nil {
		return fmt.Errorf("subscribe to button presses: %w", err)
	}
	b.logInfo("subscribed to button presses", "topic", pressTopic)

	telemetryTopic := b.cfg.Discovery.TelemetryTopic
	if err := b.mqtt.Subscribe(telemetryTopic, b.qos(), b.handleTelemetry); err != nil {
		return fmt.Errorf("subscribe to telemetry: %w", err)
	}
	b.logInfo("subscribed to telemetry", "topic", telemetryTopic)

	b.logInfo("bridge started",
		"device_id", b.cfg.Device.ID,
		"discovery_prefix", b.cfg.Discovery.Prefix,
		"command_topic", b.cfg.Discovery.CommandTopic)

	return nil
}

// Stop gracefully shuts down the bridge.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		// Cancel bridge context to abort in-flight audit writes
		b.ctxCancel()

		// Wait for pending operations
		b.wg.Wait()

		b.logInfo("bridge stopped")
	})
}

// publishCommandDiscovery announces the three fixed buttons. A failure
// here is fatal: without the buttons the installation is incomplete,
// and nothing later in the message flow would retry them.
func (b *Bridge) publishCommandDiscovery() error {
	dev := b.snapshotDevice()
	for _, desc := range b.commands {
		b.registry.Observe(desc)
		msg, err := b.encoder.Encode(dev, desc)
		if err != nil {
			return fmt.Errorf("encode %s discovery config: %w", desc.ID, err)
		}
		if err := b.mqtt.Publish(msg.Topic, msg.Payload, b.qos(), msg.Retain); err != nil {
			return fmt.Errorf("publish %s discovery config: %w", desc.ID, err)
		}
		b.registry.MarkPublished(desc)
		b.logInfo("published button discovery config",
			"entity_id", desc.ID,
			"topic", msg.Topic)
	}
	return nil
}

// handleTelemetry routes one inbound generator message through the
// classifier, registry, and encoder.
func (b *Bridge) handleTelemetry(topic string, payload []byte) {
	// The command topic sits under the telemetry wildcard but carries
	// outbound commands, not telemetry.
	if topic == b.cfg.Discovery.CommandTopic {
		return
	}

	suffix, ok := b.telemetrySuffix(topic)
	if !ok {
		return
	}

	if metadataOnly := b.applyDeviceMetadata(suffix, payload); metadataOnly {
		return
	}

	desc := b.classifier.Classify(suffix, payload)
	decision := b.registry.Observe(desc)
	if decision != Skip {
		msg, err := b.encoder.Encode(b.snapshotDevice(), desc)
		if err != nil {
			b.logError("failed to encode discovery config", err)
			return
		}
		// On publish failure the fingerprint stays uncommitted, so the
		// next message on this topic triggers another attempt.
		if err := b.mqtt.Publish(msg.Topic, msg.Payload, b.qos(), msg.Retain); err != nil {
			b.logError("failed to publish discovery config", err)
			return
		}
		b.registry.MarkPublished(desc)
		b.logInfo("published discovery config",
			"entity_id", desc.ID,
			"decision", decision.String(),
			"kind", desc.Kind.String())
	}

	b.recordTelemetry(desc, topic, payload)
}

// handlePress relays one button press to the generator command topic.
// The publish is fire and forget: a failure is logged, not retried,
// since the user can simply press again.
func (b *Bridge) handlePress(topic string, payload []byte) {
	action := topic[strings.LastIndexByte(topic, '/')+1:]
	desc, ok := b.commandsByAction[action]
	if !ok {
		b.logError("ignoring button press", fmt.Errorf("%w: %s", ErrUnknownAction, action))
		return
	}

	commandTopic := b.cfg.Discovery.CommandTopic
	if err := b.mqtt.Publish(commandTopic, []byte(desc.PressPayload), b.qos(), false); err != nil {
		b.logError("failed to publish generator command", err)
		return
	}

	b.logInfo("relayed generator command",
		"action", action,
		"command", desc.PressPayload,
		"topic", commandTopic)

	if b.telemetry != nil {
		b.telemetry.RecordCommandEvent(action)
	}

	if b.recorder != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			ctx, cancel := context.WithTimeout(b.ctx, recordTimeout)
			defer cancel()
			if err := b.recorder.RecordCommand(ctx, action, desc.PressPayload, topic); err != nil {
				b.logError("failed to record command", err)
			}
		}()
	}
}

// telemetrySuffix strips the configured telemetry prefix from a topic.
// Messages on the bare prefix carry no entity information.
func (b *Bridge) telemetrySuffix(topic string) (string, bool) {
	prefix := b.cfg.TelemetryPrefix() + "/"
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	suffix := topic[len(prefix):]
	if suffix == "" {
		return "", false
	}
	return suffix, true
}

// applyDeviceMetadata folds controller identity topics into the shared
// device block. The detected controller supplies the device model;
// that topic and the serial number are metadata only, while the
// firmware version additionally remains a sensor entity, so it reports
// metadataOnly false.
func (b *Bridge) applyDeviceMetadata(suffix string, payload []byte) (metadataOnly bool) {
	if !utf8.Valid(payload) {
		return false
	}
	value := strings.TrimSpace(string(payload))
	if value == "" {
		return false
	}

	normalized := normalizeID(suffix)
	b.deviceMu.Lock()
	defer b.deviceMu.Unlock()

	switch {
	case strings.Contains(normalized, "serial"):
		b.device.SerialNumber = value
		return true
	case strings.Contains(normalized, "controller_detected"):
		b.device.Model = value
		return true
	case strings.Contains(normalized, "firmware"):
		b.device.SWVersion = value
		return false
	}
	return false
}

// snapshotDevice returns a copy of the current device identity.
func (b *Bridge) snapshotDevice() Device {
	b.deviceMu.RLock()
	defer b.deviceMu.RUnlock()
	return b.device
}

// recordTelemetry forwards numeric readings to the telemetry recorder.
func (b *Bridge) recordTelemetry(desc EntityDescriptor, topic string, payload []byte) {
	if b.telemetry == nil || desc.Kind != ValueNumeric {
		return
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil {
		return
	}
	b.telemetry.RecordTelemetry(desc.ID, topic, value)
}

func (b *Bridge) qos() byte {
	return byte(b.cfg.MQTT.QoS)
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
}

// logInfo logs an info message if logger is set.
func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if logger is set.
func (b *Bridge) logError(msg string, err error) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}
