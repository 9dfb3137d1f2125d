package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/getmockd/omnisend/pkg/logging"
	"github.com/getmockd/omnisend/pkg/mqtt"
	"github.com/getmockd/omnisend/pkg/protocol"
	"golang.org/x/sync/errgroup"
)

// Default listen addresses.
const (
	DefaultMQTTAddr   = "127.0.0.1:1883"
	DefaultMQTTSNAddr = "127.0.0.1:10000"
	DefaultCoAPAddr   = "127.0.0.1:5683"
	DefaultHTTPAddr   = "127.0.0.1:8080"
)

const shutdownTimeout = 5 * time.Second

// Config holds the listen addresses. Port 0 picks a free port.
type Config struct {
	MQTTAddr   string `yaml:"mqtt"   env:"MQTT_ADDR"`
	MQTTSNAddr string `yaml:"mqttsn" env:"MQTTSN_ADDR"`
	CoAPAddr   string `yaml:"coap"   env:"COAP_ADDR"`
	HTTPAddr   string `yaml:"http"   env:"HTTP_ADDR"`
}

// DefaultConfig returns the well-known local ports.
func DefaultConfig() Config {
	return Config{
		MQTTAddr:   DefaultMQTTAddr,
		MQTTSNAddr: DefaultMQTTSNAddr,
		CoAPAddr:   DefaultCoAPAddr,
		HTTPAddr:   DefaultHTTPAddr,
	}
}

// Ephemeral returns a config binding every target to a free loopback port.
func Ephemeral() Config {
	return Config{
		MQTTAddr:   "127.0.0.1:0",
		MQTTSNAddr: "127.0.0.1:0",
		CoAPAddr:   "127.0.0.1:0",
		HTTPAddr:   "127.0.0.1:0",
	}
}

// Event is one message received by a target.
type Event struct {
	Protocol protocol.Protocol
	From     string
	// Target is the topic, path or URL path the message was sent to. Empty
	// for MQTT-SN.
	Target  string
	Payload []byte
}

// Sandbox owns the local targets.
type Sandbox struct {
	cfg Config
	log *slog.Logger

	broker   *mqtt.Broker
	snConn   *net.UDPConn
	coapConn *net.UDPConn
	httpLn   net.Listener
	httpSrv  *http.Server

	mu       sync.RWMutex
	handlers []func(Event)

	group  *errgroup.Group
	cancel context.CancelFunc
}

// New creates a sandbox. Nothing is bound until Start.
func New(cfg Config, log *slog.Logger) *Sandbox {
	def := DefaultConfig()
	if cfg.MQTTAddr == "" {
		cfg.MQTTAddr = def.MQTTAddr
	}
	if cfg.MQTTSNAddr == "" {
		cfg.MQTTSNAddr = def.MQTTSNAddr
	}
	if cfg.CoAPAddr == "" {
		cfg.CoAPAddr = def.CoAPAddr
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = def.HTTPAddr
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Sandbox{cfg: cfg, log: log}
}

// OnEvent registers a handler for received messages. Handlers run on the
// receiving goroutine and must not block.
func (s *Sandbox) OnEvent(h func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
}

func (s *Sandbox) emit(e Event) {
	s.mu.RLock()
	handlers := make([]func(Event), len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

// Start binds every target and serves them in the background. When Start
// returns without error all addresses are listening.
func (s *Sandbox) Start(ctx context.Context) error {
	if err := s.bind(ctx); err != nil {
		s.release()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	s.group, s.cancel = g, cancel

	g.Go(func() error {
		return s.serveMQTTSN(ctx)
	})
	g.Go(func() error {
		return s.serveCoAP(ctx)
	})
	g.Go(func() error {
		if err := s.httpSrv.Serve(s.httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http echo: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return s.shutdown()
	})

	s.log.Info("sandbox started",
		"mqtt", s.MQTTAddr(),
		"mqttsn", s.MQTTSNAddr(),
		"coap", s.CoAPAddr(),
		"http", s.HTTPAddr())
	return nil
}

func (s *Sandbox) bind(ctx context.Context) error {
	broker, err := mqtt.NewBroker(mqtt.BrokerConfig{Address: s.cfg.MQTTAddr, Logger: s.log.With("target", "mqtt")})
	if err != nil {
		return fmt.Errorf("mqtt broker: %w", err)
	}
	broker.OnMessage(func(m mqtt.Message) {
		s.emit(Event{Protocol: protocol.ProtocolMQTT, From: m.ClientID, Target: m.Topic, Payload: m.Payload})
	})
	if err := broker.Start(ctx); err != nil {
		return fmt.Errorf("mqtt broker: %w", err)
	}
	s.broker = broker

	if s.snConn, err = listenUDP(s.cfg.MQTTSNAddr); err != nil {
		return fmt.Errorf("mqtt-sn sink: %w", err)
	}
	if s.coapConn, err = listenUDP(s.cfg.CoAPAddr); err != nil {
		return fmt.Errorf("coap echo: %w", err)
	}

	var lc net.ListenConfig
	if s.httpLn, err = lc.Listen(ctx, "tcp", s.cfg.HTTPAddr); err != nil {
		return fmt.Errorf("http echo: %w", err)
	}
	s.httpSrv = &http.Server{
		Handler:           s.echoRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

func listenUDP(addr string) (*net.UDPConn, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	return net.ListenUDP("udp", udpAddr)
}

// Wait blocks until the sandbox stops and returns the first serving error.
func (s *Sandbox) Wait() error {
	if s.group == nil {
		return nil
	}
	return s.group.Wait()
}

// Close stops every target and waits for them to exit.
func (s *Sandbox) Close() error {
	if s.cancel == nil {
		s.release()
		return nil
	}
	s.cancel()
	return s.Wait()
}

func (s *Sandbox) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http echo: %w", err))
		}
	}
	if s.broker != nil {
		if err := s.broker.Stop(ctx, shutdownTimeout); err != nil {
			errs = append(errs, fmt.Errorf("mqtt broker: %w", err))
		}
	}
	s.closeUDP()

	s.log.Info("sandbox stopped")
	return errors.Join(errs...)
}

// release frees whatever bind managed to open.
func (s *Sandbox) release() {
	if s.broker != nil {
		_ = s.broker.Stop(context.Background(), shutdownTimeout)
	}
	if s.httpLn != nil {
		_ = s.httpLn.Close()
	}
	s.closeUDP()
}

func (s *Sandbox) closeUDP() {
	if s.snConn != nil {
		_ = s.snConn.Close()
	}
	if s.coapConn != nil {
		_ = s.coapConn.Close()
	}
}

// MQTTAddr returns the broker address.
func (s *Sandbox) MQTTAddr() string {
	if s.broker == nil {
		return s.cfg.MQTTAddr
	}
	return s.broker.Addr()
}

// MQTTSNAddr returns the sink address.
func (s *Sandbox) MQTTSNAddr() string {
	if s.snConn == nil {
		return s.cfg.MQTTSNAddr
	}
	return s.snConn.LocalAddr().String()
}

// CoAPAddr returns the echo server address.
func (s *Sandbox) CoAPAddr() string {
	if s.coapConn == nil {
		return s.cfg.CoAPAddr
	}
	return s.coapConn.LocalAddr().String()
}

// HTTPAddr returns the echo server address.
func (s *Sandbox) HTTPAddr() string {
	if s.httpLn == nil {
		return s.cfg.HTTPAddr
	}
	return s.httpLn.Addr().String()
}

// HTTPURL returns the echo server base URL.
func (s *Sandbox) HTTPURL() string {
	return "http://" + s.HTTPAddr()
}
