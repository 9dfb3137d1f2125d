package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getmockd/omnisend/pkg/api"
	"github.com/getmockd/omnisend/pkg/coap"
	"github.com/getmockd/omnisend/pkg/httpsend"
	"github.com/getmockd/omnisend/pkg/logging"
	"github.com/getmockd/omnisend/pkg/mqtt"
	"github.com/getmockd/omnisend/pkg/mqttsn"
	"github.com/getmockd/omnisend/pkg/requestlog"
	"github.com/getmockd/omnisend/pkg/sandbox"
)

// Config is the complete configuration.
type Config struct {
	Log     LogConfig      `yaml:"log"     envPrefix:"LOG_"`
	HTTP    HTTPConfig     `yaml:"http"    envPrefix:"HTTP_"`
	MQTT    MQTTConfig     `yaml:"mqtt"    envPrefix:"MQTT_"`
	MQTTSN  MQTTSNConfig   `yaml:"mqttsn"  envPrefix:"MQTTSN_"`
	CoAP    CoAPConfig     `yaml:"coap"    envPrefix:"COAP_"`
	API     APIConfig      `yaml:"api"     envPrefix:"API_"`
	Sandbox sandbox.Config `yaml:"sandbox" envPrefix:"SANDBOX_"`

	// Source is the config file that was loaded, if any.
	Source string `yaml:"-"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	File   string `yaml:"file"   env:"FILE"`
}

// HTTPConfig configures the HTTP sender.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// MQTTConfig configures the MQTT publisher.
type MQTTConfig struct {
	ClientID       string        `yaml:"clientId"       env:"CLIENT_ID"`
	KeepAlive      time.Duration `yaml:"keepAlive"      env:"KEEP_ALIVE"`
	ConnectTimeout time.Duration `yaml:"connectTimeout" env:"CONNECT_TIMEOUT"`
	IdleTimeout    time.Duration `yaml:"idleTimeout"    env:"IDLE_TIMEOUT"`
	EnqueueTimeout time.Duration `yaml:"enqueueTimeout" env:"ENQUEUE_TIMEOUT"`
}

// MQTTSNConfig configures the MQTT-SN sender.
type MQTTSNConfig struct {
	WriteTimeout time.Duration `yaml:"writeTimeout" env:"WRITE_TIMEOUT"`
}

// CoAPConfig configures the CoAP exchanger.
type CoAPConfig struct {
	Timeout    time.Duration `yaml:"timeout"    env:"TIMEOUT"`
	BufferSize int           `yaml:"bufferSize" env:"BUFFER_SIZE"`
	AllowPut   bool          `yaml:"allowPut"   env:"ALLOW_PUT"`
}

// APIConfig configures the HTTP API server.
type APIConfig struct {
	Addr        string `yaml:"addr"        env:"ADDR"`
	MaxBodySize int64  `yaml:"maxBodySize" env:"MAX_BODY_SIZE"`

	// HistorySize is the number of dispatches kept for /v1/requests. Zero
	// disables history.
	HistorySize int `yaml:"historySize" env:"HISTORY_SIZE"`

	// RateLimit is the sustained /v1/send rate per client IP in requests
	// per second. Zero disables rate limiting.
	RateLimit float64 `yaml:"rateLimit" env:"RATE_LIMIT"`
	RateBurst int     `yaml:"rateBurst" env:"RATE_BURST"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		HTTP: HTTPConfig{Timeout: httpsend.DefaultTimeout},
		MQTT: MQTTConfig{
			ClientID:       mqtt.DefaultClientID,
			KeepAlive:      mqtt.DefaultKeepAlive,
			ConnectTimeout: mqtt.DefaultConnectTimeout,
			IdleTimeout:    mqtt.DefaultIdleTimeout,
			EnqueueTimeout: mqtt.DefaultEnqueueTimeout,
		},
		MQTTSN: MQTTSNConfig{WriteTimeout: mqttsn.DefaultWriteTimeout},
		CoAP: CoAPConfig{
			Timeout:    coap.DefaultTimeout,
			BufferSize: coap.DefaultBufferSize,
		},
		API: APIConfig{
			Addr:        api.DefaultAddr,
			MaxBodySize: api.DefaultMaxBodySize,
			HistorySize: requestlog.DefaultCapacity,
		},
		Sandbox: sandbox.DefaultConfig(),
	}
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	var errs []error

	if !logging.IsValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	if !logging.IsValidFormat(c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"http.timeout", c.HTTP.Timeout},
		{"mqtt.keepAlive", c.MQTT.KeepAlive},
		{"mqtt.connectTimeout", c.MQTT.ConnectTimeout},
		{"mqtt.idleTimeout", c.MQTT.IdleTimeout},
		{"mqtt.enqueueTimeout", c.MQTT.EnqueueTimeout},
		{"mqttsn.writeTimeout", c.MQTTSN.WriteTimeout},
		{"coap.timeout", c.CoAP.Timeout},
	}
	for _, d := range durations {
		if d.d <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %s", d.name, d.d))
		}
	}

	if strings.TrimSpace(c.MQTT.ClientID) == "" {
		errs = append(errs, errors.New("mqtt.clientId: must not be empty"))
	}
	if c.CoAP.BufferSize <= 0 || c.CoAP.BufferSize > 65535 {
		errs = append(errs, fmt.Errorf("coap.bufferSize: must be between 1 and 65535, got %d", c.CoAP.BufferSize))
	}
	if strings.TrimSpace(c.API.Addr) == "" {
		errs = append(errs, errors.New("api.addr: must not be empty"))
	}
	if c.API.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("api.maxBodySize: must be positive, got %d", c.API.MaxBodySize))
	}
	if c.API.HistorySize < 0 {
		errs = append(errs, fmt.Errorf("api.historySize: must not be negative, got %d", c.API.HistorySize))
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("api.rateLimit: must not be negative, got %g", c.API.RateLimit))
	}
	if c.API.RateBurst < 0 {
		errs = append(errs, fmt.Errorf("api.rateBurst: must not be negative, got %d", c.API.RateBurst))
	}

	return errors.Join(errs...)
}
