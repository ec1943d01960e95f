// FilePath: internal/mqtt/mqtt.client.go
package mqtt

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/itsatony/misting-hub/internal/config"
	nuts "github.com/vaudience/go-nuts"
)

// MessageHandler receives every delivered message for the subscribed
// topics. It must not block beyond its own execution time.
type MessageHandler func(topic string, payload []byte)

// Topic filters the hub subscribes to. Everything under misting/ except
// the outbound control topics.
var subscriptions = []string{
	"misting/sensor/+/+",
	"misting/average/+",
	"misting/status",
	"misting/mode",
	"misting/event/#",
	"misting/detection/person",
}

// Client wraps the paho MQTT client with the hub's subscribe and publish
// behavior. Connection lifecycle (reconnect, resubscribe) lives here, not
// in the ingestion core.
type Client struct {
	client paho.Client
	cfg    config.MQTTConfig
}

// NewClient builds the MQTT client. handler is invoked for every message
// on the ingest topics; subscriptions are re-established on every
// (re)connect.
func NewClient(cfg config.MQTTConfig, handler MessageHandler) *Client {
	h := func(_ paho.Client, msg paho.Message) {
		handler(msg.Topic(), msg.Payload())
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetOrderMatters(false).
		SetCleanSession(false).
		SetKeepAlive(cfg.KeepAlive).
		SetPingTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(cfg.ConnectRetry)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.OnConnect = func(c paho.Client) {
		nuts.L.Infof("[MQTT] Connected to broker %s", cfg.BrokerURL)
		for _, topic := range subscriptions {
			if token := c.Subscribe(topic, cfg.QoS, h); token.Wait() && token.Error() != nil {
				nuts.L.Errorf("[MQTT] Subscribe to %s failed: %v", topic, token.Error())
			}
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		nuts.L.Warnf("[MQTT] Connection lost: %v", err)
	}

	return &Client{client: paho.NewClient(opts), cfg: cfg}
}

// Connect dials the broker, retrying with exponential backoff until the
// context is cancelled.
func (c *Client) Connect(ctx context.Context) error {
	backoff := c.cfg.ConnectRetry
	if backoff <= 0 {
		backoff = 5 * time.Second
	}
	max := c.cfg.MaxConnectWait
	if max <= 0 {
		max = 2 * time.Minute
	}

	for {
		token := c.client.Connect()
		if token.Wait() && token.Error() == nil {
			return nil
		}
		nuts.L.Warnf("[MQTT] Connect failed: %v; retrying in %s", token.Error(), backoff)
		select {
		case <-time.After(backoff):
			if backoff < max {
				backoff *= 2
			}
		case <-ctx.Done():
			return fmt.Errorf("mqtt connect cancelled: %w", ctx.Err())
		}
	}
}

// Publish sends a payload to a topic, used to republish control and mode
// commands.
func (c *Client) Publish(topic, payload string) error {
	token := c.client.Publish(topic, c.cfg.QoS, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt publish to %s failed: %w", topic, token.Error())
	}
	return nil
}

// Disconnect closes the connection, allowing in-flight work to finish.
func (c *Client) Disconnect() {
	c.client.Disconnect(250)
}
