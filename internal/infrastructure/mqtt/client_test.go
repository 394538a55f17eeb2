package mqtt

import (
	"context"
	"errors"
	"testing"
)

// These tests cover validation and state handling that needs no broker.
// Broker-backed behaviour lives in integration_test.go.

func TestCloseWithoutConnect(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestIsConnectedInitialState(t *testing.T) {
	client := &Client{}
	if client.IsConnected() {
		t.Error("IsConnected() = true for a client that never connected")
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	client := &Client{}

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() with cancelled context returned nil")
	}
}

func TestPublishValidation(t *testing.T) {
	nop := func(string, []byte) error { return nil }

	tests := []struct {
		name    string
		call    func(c *Client) error
		wantErr error
	}{
		{
			name:    "publish empty topic",
			call:    func(c *Client) error { return c.Publish("", []byte("13.2"), 1, false) },
			wantErr: ErrInvalidTopic,
		},
		{
			name:    "publish invalid qos",
			call:    func(c *Client) error { return c.Publish("generator/command", []byte("generator: stop"), 3, false) },
			wantErr: ErrInvalidQoS,
		},
		{
			name: "publish oversized payload",
			call: func(c *Client) error {
				return c.Publish("generator/command", make([]byte, maxPayloadSize+1), 1, false)
			},
			wantErr: ErrPublishFailed,
		},
		{
			name:    "publish while disconnected",
			call:    func(c *Client) error { return c.Publish("generator/command", []byte("generator: stop"), 1, false) },
			wantErr: ErrNotConnected,
		},
		{
			name:    "subscribe empty topic",
			call:    func(c *Client) error { return c.Subscribe("", 1, nop) },
			wantErr: ErrInvalidTopic,
		},
		{
			name:    "subscribe invalid qos",
			call:    func(c *Client) error { return c.Subscribe("generator/#", 3, nop) },
			wantErr: ErrInvalidQoS,
		},
		{
			name:    "subscribe nil handler",
			call:    func(c *Client) error { return c.Subscribe("generator/#", 1, nil) },
			wantErr: ErrSubscribeFailed,
		},
		{
			name:    "subscribe while disconnected",
			call:    func(c *Client) error { return c.Subscribe("generator/#", 1, nop) },
			wantErr: ErrNotConnected,
		},
		{
			name:    "unsubscribe empty topic",
			call:    func(c *Client) error { return c.Unsubscribe("") },
			wantErr: ErrInvalidTopic,
		},
		{
			name:    "unsubscribe while disconnected",
			call:    func(c *Client) error { return c.Unsubscribe("generator/#") },
			wantErr: ErrNotConnected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &Client{subscriptions: make(map[string]subscription)}
			if err := tt.call(client); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscriptionTracking(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	if got := client.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", got)
	}
	if client.HasSubscription("generator/#") {
		t.Error("HasSubscription() = true before subscribing")
	}
}

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"status", Topics{}.SystemStatus(), "genmon-bridge/status"},
		{"press", Topics{}.Press("starttransfer"), "genmon-bridge/press/starttransfer"},
		{"all presses", Topics{}.AllPresses(), "genmon-bridge/press/+"},
		{
			"sensor discovery",
			Topics{}.DiscoveryConfig("homeassistant", "sensor", "Genmon_Generator", "genmon_generator_status_rpm"),
			"homeassistant/sensor/Genmon_Generator/genmon_generator_status_rpm/config",
		},
		{
			"button discovery",
			Topics{}.DiscoveryConfig("homeassistant", "button", "Genmon_Generator", "genmon_generator__stop"),
			"homeassistant/button/Genmon_Generator/genmon_generator__stop/config",
		},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s topic = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
