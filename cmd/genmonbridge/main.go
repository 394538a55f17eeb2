// GenMon Bridge - Home Assistant MQTT discovery for generator monitors
//
// This is the main entry point for the GenMon bridge. The bridge
// watches the MQTT telemetry a GenMon installation publishes, announces
// each data point to Home Assistant via MQTT discovery, and exposes
// start/stop/start-and-transfer buttons that relay commands back to the
// generator monitor.
//
// GenMon: https://github.com/jgyates/genmon
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/genmon-bridge/migrations"

	"github.com/nerrad567/genmon-bridge/internal/bridges/genmon"
	"github.com/nerrad567/genmon-bridge/internal/commandlog"
	"github.com/nerrad567/genmon-bridge/internal/infrastructure/config"
	"github.com/nerrad567/genmon-bridge/internal/infrastructure/database"
	"github.com/nerrad567/genmon-bridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/genmon-bridge/internal/infrastructure/logging"
	"github.com/nerrad567/genmon-bridge/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting GenMon bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration. The bridge runs with pure defaults when no
	// config file exists, so a bare `genmonbridge` against a local
	// broker just works.
	configPath := getConfigPath()
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database for the command audit log
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	commandLog := commandlog.NewSQLiteRepository(db.DB)

	// Surface recent command activity from previous runs.
	recent, err := commandLog.List(ctx, commandlog.Filter{Limit: 5})
	if err != nil {
		return fmt.Errorf("reading command history: %w", err)
	}
	if recent.Total > 0 {
		last := recent.Entries[0]
		log.Info("command history loaded",
			"total", recent.Total,
			"last_action", last.Action,
			"last_relayed_at", last.RelayedAt,
		)
	} else {
		log.Info("command history empty")
	}

	// Connect to MQTT broker. An unreachable broker or rejected
	// credentials here is fatal; mid-run disconnects are handled by
	// paho's auto-reconnect.
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Set up MQTT logging callbacks
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional telemetry history)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Create and start the bridge
	bridge, err := startBridge(ctx, cfg, mqttClient, commandLog, influxClient, log)
	if err != nil {
		return fmt.Errorf("starting bridge: %w", err)
	}
	defer func() {
		log.Info("stopping bridge")
		bridge.Stop()
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. Bridge
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("GenMon bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GENMON_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GENMON_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// startBridge wires the bridge to its collaborators and starts it.
func startBridge(ctx context.Context, cfg *config.Config, mqttClient *mqtt.Client, commandLog commandlog.Repository, influxClient *influxdb.Client, log *logging.Logger) (*genmon.Bridge, error) {
	opts := genmon.BridgeOptions{
		Config:          cfg,
		MQTTClient:      &mqttBridgeAdapter{client: mqttClient},
		Logger:          log,
		CommandRecorder: &commandRecorderAdapter{repo: commandLog},
	}
	if influxClient != nil {
		opts.TelemetryRecorder = &telemetryRecorderAdapter{client: influxClient}
	}

	bridge, err := genmon.NewBridge(opts)
	if err != nil {
		return nil, fmt.Errorf("creating bridge: %w", err)
	}

	if err := bridge.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting bridge: %w", err)
	}
	log.Info("bridge started", "device_id", cfg.Device.ID)

	return bridge, nil
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// mqttBridgeAdapter adapts the infrastructure MQTT client to the bridge's
// MQTTClient interface. The primary difference is the Subscribe handler
// signature:
// - Infrastructure mqtt: func(topic string, payload []byte) error
// - Bridge expects: func(topic string, payload []byte)
type mqttBridgeAdapter struct {
	client *mqtt.Client
}

// Publish implements genmon.MQTTClient.
func (a *mqttBridgeAdapter) Publish(topic string, payload []byte, qos byte, retained bool) error {
	return a.client.Publish(topic, payload, qos, retained)
}

// Subscribe implements genmon.MQTTClient.
func (a *mqttBridgeAdapter) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	// Wrap the void handler to return nil error (bridge handlers don't return errors)
	return a.client.Subscribe(topic, qos, func(t string, p []byte) error {
		handler(t, p)
		return nil
	})
}

// IsConnected implements genmon.MQTTClient.
func (a *mqttBridgeAdapter) IsConnected() bool {
	return a.client.IsConnected()
}

// commandRecorderAdapter adapts the command log repository to the
// bridge's CommandRecorder interface.
type commandRecorderAdapter struct {
	repo commandlog.Repository
}

// RecordCommand implements genmon.CommandRecorder.
func (a *commandRecorderAdapter) RecordCommand(ctx context.Context, action, command, pressTopic string) error {
	return a.repo.Create(ctx, &commandlog.Entry{
		Action:     action,
		Command:    command,
		PressTopic: pressTopic,
	})
}

// telemetryRecorderAdapter adapts the InfluxDB client to the bridge's
// TelemetryRecorder interface.
type telemetryRecorderAdapter struct {
	client *influxdb.Client
}

// RecordTelemetry implements genmon.TelemetryRecorder.
func (a *telemetryRecorderAdapter) RecordTelemetry(entityID, topic string, value float64) {
	a.client.WriteTelemetry(entityID, topic, value)
}

// RecordCommandEvent implements genmon.TelemetryRecorder.
func (a *telemetryRecorderAdapter) RecordCommandEvent(action string) {
	a.client.WriteCommandEvent(action)
}
