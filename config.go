package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"smartkiosk/api"
	"smartkiosk/button"
	"smartkiosk/eventpipe"
	"smartkiosk/indicator"
	"smartkiosk/mqtt"
	"smartkiosk/reader"
)

// Config is the main configuration structure for smartkiosk.
type Config struct {
	// Kiosk backend
	API api.Config `yaml:"api"`

	// MQTT connection settings
	MQTT mqtt.Config `yaml:"mqtt"`

	// Card reader configuration
	Reader reader.Config `yaml:"reader"`

	// Indicator configuration (LEDs, neopixels, status screen)
	Indicator indicator.Config `yaml:"indicator"`

	// Push buttons
	Button button.Config `yaml:"button"`

	// Bench command pipe
	EventPipe eventpipe.Config `yaml:"event_pipe"`

	// Local control API
	Control ControlConfig `yaml:"control"`

	// General settings
	ClientID     string   `yaml:"client_id"`
	IdleSecs     int      `yaml:"idle_secs"`
	PingSecs     int      `yaml:"ping_secs"`
	EmailDomains []string `yaml:"email_domains"`
}

// ControlConfig holds the local control API settings.
type ControlConfig struct {
	Listen string `yaml:"listen"` // empty = disabled
}

const (
	defaultIdleSecs = 60
	defaultPingSecs = 120
)

// LoadConfig reads the YAML config at path, applies KIOSK_* environment
// overrides and fills defaults.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client_id missing in config file")
	}
	if cfg.API.URL == "" {
		return nil, fmt.Errorf("api.url missing in config file")
	}
	return &cfg, nil
}

// applyEnv overrides deployment-specific values from the environment.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"KIOSK_CLIENT_ID":      &c.ClientID,
		"KIOSK_API_URL":        &c.API.URL,
		"KIOSK_API_CA_FILE":    &c.API.CAFile,
		"KIOSK_MQTT_HOST":      &c.MQTT.Host,
		"KIOSK_MQTT_CA_CERT":   &c.MQTT.CACert,
		"KIOSK_READER_DEVICE":  &c.Reader.Device,
		"KIOSK_CONTROL_LISTEN": &c.Control.Listen,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	if v, ok := lookup("KIOSK_MQTT_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KIOSK_MQTT_PORT: %w", err)
		}
		c.MQTT.Port = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.IdleSecs <= 0 {
		c.IdleSecs = defaultIdleSecs
	}
	if c.PingSecs <= 0 {
		c.PingSecs = defaultPingSecs
	}
	for i, d := range c.EmailDomains {
		if !strings.HasPrefix(d, "@") {
			c.EmailDomains[i] = "@" + d
		}
	}
}
