package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultPort      = 1883
	defaultKeepAlive = 60 * time.Second
	quiesceMillis    = 250
)

// offlineStatus is published by the broker on the ping topic when the
// kiosk drops off without disconnecting.
const offlineStatus = `{"status":"offline"}`

// Config holds broker settings. An empty Host disables the bus.
type Config struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	CACert        string `yaml:"ca_cert"`
	ClientCert    string `yaml:"client_cert"`
	ClientKey     string `yaml:"client_key"`
	KeepAliveSecs int    `yaml:"keepalive_secs"`
}

func (c Config) secure() bool {
	return c.CACert != "" || c.ClientCert != ""
}

func (c Config) broker() string {
	if c.secure() {
		return fmt.Sprintf("ssl://%s:%d", c.Host, c.Port)
	}
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	return fmt.Sprintf("tcp://%s:%d", c.Host, port)
}

func (c Config) keepAlive() time.Duration {
	if c.KeepAliveSecs > 0 {
		return time.Duration(c.KeepAliveSecs) * time.Second
	}
	return defaultKeepAlive
}

// Handlers are called from paho's goroutines.
type Handlers struct {
	OnConnect    func()
	OnDisconnect func()
	OnMessage    func(topic string, payload []byte)
}

// Client is this node's connection to the kiosk status and control
// bus. A disabled Client accepts every call and publishes nothing.
type Client struct {
	conn     paho.Client // nil when disabled
	clientID string
	h        Handlers

	mu     sync.Mutex
	topics []string // re-subscribed on every connect
}

// New builds a client for clientID. It does not connect.
func New(cfg Config, clientID string, h Handlers) (*Client, error) {
	c := &Client{clientID: clientID, h: h}
	if cfg.Host == "" {
		log.Println("MQTT disabled (no host configured)")
		return c, nil
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.broker()).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetKeepAlive(cfg.keepAlive()).
		SetWill(StatusTopic(clientID, LeafPing), offlineStatus, 0, false).
		SetConnectionLostHandler(c.lost).
		SetOnConnectHandler(c.connected).
		SetDefaultPublishHandler(c.message)

	if cfg.secure() {
		tc, err := tlsConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("mqtt tls: %w", err)
		}
		opts.SetTLSConfig(tc)
	} else {
		log.Println("MQTT using non-TLS connection")
	}

	paho.ERROR = log.New(os.Stdout, "[MQTT ERROR] ", 0)
	paho.CRITICAL = log.New(os.Stdout, "[MQTT CRIT] ", 0)
	paho.WARN = log.New(os.Stdout, "[MQTT WARN] ", 0)

	c.conn = paho.NewClient(opts)
	return c, nil
}

func tlsConfig(cfg Config) (*tls.Config, error) {
	tc := &tls.Config{}
	if cfg.CACert != "" {
		pem, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates in %s", cfg.CACert)
		}
		tc.RootCAs = pool
	}
	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tc.Certificates = []tls.Certificate{cert}
	}
	return tc, nil
}

// Enabled reports whether a broker is configured.
func (c *Client) Enabled() bool {
	return c.conn != nil
}

// Connect blocks until the first connection attempt settles. A disabled
// client reports itself connected so the kiosk leaves the lost state.
func (c *Client) Connect() error {
	if c.conn == nil {
		if c.h.OnConnect != nil {
			c.h.OnConnect()
		}
		return nil
	}
	if token := c.conn.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect: %w", token.Error())
	}
	return nil
}

func (c *Client) Disconnect() {
	if c.conn != nil {
		c.conn.Disconnect(quiesceMillis)
	}
}

// Subscribe adds topic to the set held across reconnects, subscribing
// now when already connected.
func (c *Client) Subscribe(topic string) error {
	if c.conn == nil {
		return nil
	}
	c.mu.Lock()
	c.topics = append(c.topics, topic)
	c.mu.Unlock()

	if !c.conn.IsConnected() {
		return nil
	}
	return c.subscribe(topic)
}

func (c *Client) subscribe(topic string) error {
	if token := c.conn.Subscribe(topic, 0, nil); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	return nil
}

// PublishJSON publishes v encoded as JSON.
func (c *Client) PublishJSON(topic string, v any) error {
	if c.conn == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}
	c.conn.Publish(topic, 0, false, b)
	return nil
}

// Status publishes v on this node's status topic for leaf.
func (c *Client) Status(leaf string, v any) error {
	return c.PublishJSON(StatusTopic(c.clientID, leaf), v)
}

func (c *Client) connected(paho.Client) {
	log.Println("MQTT connected")

	c.mu.Lock()
	topics := append([]string(nil), c.topics...)
	c.mu.Unlock()
	for _, t := range topics {
		if err := c.subscribe(t); err != nil {
			log.Printf("MQTT %v", err)
		}
	}

	if c.h.OnConnect != nil {
		c.h.OnConnect()
	}
}

func (c *Client) lost(_ paho.Client, err error) {
	log.Printf("MQTT connection lost: %v", err)
	if c.h.OnDisconnect != nil {
		c.h.OnDisconnect()
	}
}

func (c *Client) message(_ paho.Client, msg paho.Message) {
	if c.h.OnMessage != nil {
		c.h.OnMessage(msg.Topic(), msg.Payload())
	}
}
