// Package mqtt wraps the paho client with the connection behaviour the
// bridge needs: auto-reconnect with subscription replay, a Last Will
// and Testament that flips the bridge's status topic to offline, panic
// recovery around message handlers, and timeout-bounded publish and
// subscribe calls.
//
// The bridge shares one broker with GenMon and Home Assistant. It
// consumes generator telemetry, publishes retained discovery configs
// under the Home Assistant discovery prefix, and relays button presses
// back to the generator command topic:
//
//	GenMon → broker → bridge → broker → Home Assistant
//
// Production deployments should enable TLS and broker credentials;
// anonymous plaintext is for local development only.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe("generator/#", 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("%s = %s", topic, payload)
//	        return nil
//	    })
//
//	topic := mqtt.Topics{}.DiscoveryConfig("homeassistant", "button", "Genmon_Generator", "genmon_generator__stop")
//	client.PublishRetained(topic, configJSON)
package mqtt
