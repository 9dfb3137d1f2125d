package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getmockd/omnisend/pkg/logging"
	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
)

// DefaultBrokerAddress is the listen address used when none is configured.
const DefaultBrokerAddress = ":1883"

// Message is a publish received by the embedded broker.
type Message struct {
	ClientID string
	Topic    string
	Payload  []byte
	QoS      QoS
	Retain   bool
}

// MessageHandler is called for every publish the broker receives.
type MessageHandler func(Message)

// BrokerConfig configures the embedded broker.
type BrokerConfig struct {
	// Address is the TCP listen address (host:port).
	Address string

	// Logger receives broker logs. Nil disables logging.
	Logger *slog.Logger
}

// Broker is an embedded MQTT broker that accepts every client.
type Broker struct {
	config   BrokerConfig
	server   *mochi.Server
	listener *listeners.TCP
	log      *slog.Logger

	mu       sync.RWMutex
	running  bool
	handlers []MessageHandler
}

// NewBroker creates a broker. It does not listen until Start.
func NewBroker(config BrokerConfig) (*Broker, error) {
	if config.Address == "" {
		config.Address = DefaultBrokerAddress
	}
	if config.Logger == nil {
		config.Logger = logging.Nop()
	}

	server := mochi.New(&mochi.Options{
		InlineClient: true,
		Logger:       config.Logger,
	})

	b := &Broker{
		config: config,
		server: server,
		log:    config.Logger,
	}

	// mochi-mqtt requires an auth hook - use AllowHook to allow all connections
	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, fmt.Errorf("failed to add allow hook: %w", err)
	}
	if err := server.AddHook(&messageHook{broker: b}, nil); err != nil {
		return nil, fmt.Errorf("failed to add message hook: %w", err)
	}

	return b, nil
}

// OnMessage registers a handler for received publishes.
func (b *Broker) OnMessage(h MessageHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Start starts listening. The context can be used for cancellation during startup.
func (b *Broker) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return errors.New("broker is already running")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	b.listener = listeners.NewTCP(listeners.Config{
		ID:      "omnisend-mqtt",
		Address: b.config.Address,
	})
	if err := b.server.AddListener(b.listener); err != nil {
		return fmt.Errorf("failed to add listener: %w", err)
	}

	go func() {
		if err := b.server.Serve(); err != nil {
			b.log.Error("MQTT server error", "error", err)
		}
	}()

	b.running = true
	b.log.Info("mqtt broker listening", "address", b.listener.Address())
	return nil
}

// Addr returns the listen address. Before Start it returns the configured address.
func (b *Broker) Addr() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.listener == nil {
		return b.config.Address
	}
	return b.listener.Address()
}

// Stop shuts the broker down, waiting at most timeout.
func (b *Broker) Stop(ctx context.Context, timeout time.Duration) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	b.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// The lock is not held while closing: client disconnects run hooks.
	done := make(chan error, 1)
	go func() {
		done <- b.server.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to close server: %w", err)
		}
		return nil
	case <-shutdownCtx.Done():
		return fmt.Errorf("shutdown timed out: %w", shutdownCtx.Err())
	}
}

func (b *Broker) notify(m Message) {
	b.mu.RLock()
	handlers := make([]MessageHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(m)
	}
}
