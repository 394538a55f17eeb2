package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the GenMon bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Database  DatabaseConfig  `yaml:"database"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig identifies the physical generator in Home Assistant.
// These values are immutable for the process lifetime.
type DeviceConfig struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Manufacturer string `yaml:"manufacturer"`
	Model        string `yaml:"model"`
	Origin       string `yaml:"origin"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// DiscoveryConfig contains Home Assistant discovery and generator topic settings.
type DiscoveryConfig struct {
	// Prefix is the Home Assistant discovery prefix.
	Prefix string `yaml:"prefix"`

	// TelemetryTopic is the wildcard subscription covering all generator
	// telemetry (e.g. "generator/#"). Everything under it is telemetry
	// except CommandTopic.
	TelemetryTopic string `yaml:"telemetry_topic"`

	// CommandTopic is where generator control commands are published.
	CommandTopic string `yaml:"command_topic"`
}

// DatabaseConfig contains SQLite database settings for the command audit log.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings for telemetry history.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GENMON_SECTION_KEY
// For example: GENMON_MQTT_HOST, GENMON_DEVICE_ID
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to pure defaults plus
// environment overrides when the config file does not exist. The bridge
// is fully usable against a local broker with no config file at all.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := defaultConfig()
		applyEnvOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("validating config: %w", err)
		}
		return cfg, nil
	}
	return Load(path)
}

// defaultConfig returns a Config with sensible defaults.
// These mirror the upstream genmon MQTT add-on defaults.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			ID:           "Genmon_Generator",
			Name:         "Generator",
			Manufacturer: "GenMon",
			Model:        "Generator Monitor",
			Origin:       "Generator Monitor",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "genmon-bridge",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Discovery: DiscoveryConfig{
			Prefix:         "homeassistant",
			TelemetryTopic: "generator/#",
			CommandTopic:   "generator/command",
		},
		Database: DatabaseConfig{
			Path:        "./data/genmon-bridge.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GENMON_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("GENMON_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GENMON_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("GENMON_MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.Broker.ClientID = v
	}
	if v := os.Getenv("GENMON_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GENMON_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Discovery
	if v := os.Getenv("GENMON_DISCOVERY_PREFIX"); v != "" {
		cfg.Discovery.Prefix = v
	}
	if v := os.Getenv("GENMON_TELEMETRY_TOPIC"); v != "" {
		cfg.Discovery.TelemetryTopic = v
	}
	if v := os.Getenv("GENMON_COMMAND_TOPIC"); v != "" {
		cfg.Discovery.CommandTopic = v
	}

	// Device identity
	if v := os.Getenv("GENMON_DEVICE_ID"); v != "" {
		cfg.Device.ID = v
	}
	if v := os.Getenv("GENMON_DEVICE_NAME"); v != "" {
		cfg.Device.Name = v
	}
	if v := os.Getenv("GENMON_DEVICE_MANUFACTURER"); v != "" {
		cfg.Device.Manufacturer = v
	}
	if v := os.Getenv("GENMON_DEVICE_MODEL"); v != "" {
		cfg.Device.Model = v
	}
	if v := os.Getenv("GENMON_DEVICE_ORIGIN"); v != "" {
		cfg.Device.Origin = v
	}

	// Database
	if v := os.Getenv("GENMON_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// InfluxDB
	if v := os.Getenv("GENMON_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Device validation
	if c.Device.ID == "" {
		errs = append(errs, "device.id is required")
	}

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Discovery validation
	if c.Discovery.Prefix == "" {
		errs = append(errs, "discovery.prefix is required")
	}
	if c.Discovery.TelemetryTopic == "" {
		errs = append(errs, "discovery.telemetry_topic is required")
	}
	if c.Discovery.CommandTopic == "" {
		errs = append(errs, "discovery.command_topic is required")
	}
	if strings.ContainsAny(c.Discovery.CommandTopic, "+#") {
		errs = append(errs, "discovery.command_topic must not contain wildcards")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// InfluxDB validation (only when enabled)
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Org == "" {
			errs = append(errs, "influxdb.org is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// TelemetryPrefix returns the first segment of the telemetry wildcard
// topic (e.g. "generator" for "generator/#"). Incoming topics are
// matched against this prefix to extract the entity suffix.
func (c *Config) TelemetryPrefix() string {
	topic := c.Discovery.TelemetryTopic
	if idx := strings.IndexByte(topic, '/'); idx >= 0 {
		return topic[:idx]
	}
	return topic
}
