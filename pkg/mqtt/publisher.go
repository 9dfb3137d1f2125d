package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/getmockd/omnisend/pkg/logging"
	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/getmockd/omnisend/pkg/request"
)

// Defaults for Options.
const (
	DefaultClientID       = "omnisend-client"
	DefaultKeepAlive      = 10 * time.Second
	DefaultConnectTimeout = 5 * time.Second
	DefaultIdleTimeout    = 30 * time.Second
	DefaultEnqueueTimeout = 5 * time.Second

	// disconnectQuiesce is how long Disconnect waits for in-flight work, in milliseconds.
	disconnectQuiesce = 250

	// connectGrace is added to ConnectTimeout while a publish waits behind a
	// connect in progress.
	connectGrace = time.Second
)

// ErrSupervisorClosed is returned by Publish after Close.
var ErrSupervisorClosed = errors.New("mqtt supervisor is closed")

// Gauge tracks the number of open sessions. prometheus.Gauge satisfies it.
type Gauge interface {
	Inc()
	Dec()
}

// Options configures a Supervisor.
type Options struct {
	// ClientID is the fixed client identifier used for every session.
	ClientID string

	// KeepAlive is the MQTT keep-alive interval.
	KeepAlive time.Duration

	// ConnectTimeout bounds the initial connection to a broker.
	ConnectTimeout time.Duration

	// IdleTimeout is how long a session worker lives without traffic.
	IdleTimeout time.Duration

	// EnqueueTimeout bounds how long Publish waits for a busy worker.
	EnqueueTimeout time.Duration

	// Sessions, when set, is incremented and decremented as sessions open and close.
	Sessions Gauge

	// Logger receives session lifecycle logs. Nil disables logging.
	Logger *slog.Logger

	// NewClient creates the underlying client. Defaults to paho.NewClient.
	NewClient func(*paho.ClientOptions) paho.Client
}

func (o *Options) applyDefaults() {
	if o.ClientID == "" {
		o.ClientID = DefaultClientID
	}
	if o.KeepAlive <= 0 {
		o.KeepAlive = DefaultKeepAlive
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.EnqueueTimeout <= 0 {
		o.EnqueueTimeout = DefaultEnqueueTimeout
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	if o.NewClient == nil {
		o.NewClient = paho.NewClient
	}
}

// Supervisor owns the session workers, one per broker address.
type Supervisor struct {
	opts Options
	log  *slog.Logger

	mu      sync.Mutex
	workers map[string]*worker
	closed  bool
	wg      sync.WaitGroup
}

// NewSupervisor creates a Supervisor. No connection is opened until the first publish.
func NewSupervisor(opts Options) *Supervisor {
	opts.applyDefaults()
	return &Supervisor{
		opts:    opts,
		log:     opts.Logger,
		workers: make(map[string]*worker),
	}
}

type publishJob struct {
	topic   string
	qos     QoS
	payload []byte
	result  chan error
}

type worker struct {
	addr   string
	broker string
	jobs   chan publishJob
	// done is closed by whoever removes the worker from the map.
	done   chan struct{}
	client paho.Client

	// connecting is set while the worker waits for CONNACK.
	connecting atomic.Bool
	// lastFailure is the most recent connect failure, nil after a success.
	lastFailure atomic.Pointer[connectFailure]
}

type connectFailure struct {
	err error
	at  time.Time
}

// Publish hands one message to the session worker of the request's broker and
// returns once the client has accepted it locally. Broker acknowledgement is
// not awaited.
func (s *Supervisor) Publish(ctx context.Context, req request.MQTT) (request.StatusResult, error) {
	job := publishJob{
		topic:   req.Topic,
		qos:     MapQoS(req.QoS),
		payload: []byte(req.Message),
		result:  make(chan error, 1),
	}

	start := time.Now()
	enqueue := time.NewTimer(s.opts.EnqueueTimeout)
	defer enqueue.Stop()
	extended := false

	for {
		w, err := s.worker(req)
		if err != nil {
			return request.StatusResult{}, err
		}

		select {
		case w.jobs <- job:
		case <-w.done:
			// Retired between lookup and hand-off; the job was not taken.
			continue
		case <-enqueue.C:
			// The worker is blocked on a connect; its outcome decides this call.
			if w.connecting.Load() && !extended {
				extended = true
				enqueue.Reset(s.opts.ConnectTimeout + connectGrace)
				continue
			}
			if f := w.lastFailure.Load(); f != nil && f.at.After(start) {
				return request.StatusResult{}, f.err
			}
			return request.StatusResult{}, protocol.Errorf(protocol.KindTransport, protocol.ProtocolMQTT, "enqueue",
				"mqtt session for %s is busy", w.addr)
		case <-ctx.Done():
			return request.StatusResult{}, contextError(ctx, "enqueue")
		}

		select {
		case err := <-job.result:
			if err != nil {
				return request.StatusResult{}, err
			}
			return request.Published(), nil
		case <-ctx.Done():
			return request.StatusResult{}, contextError(ctx, "publish")
		}
	}
}

// worker returns the live worker for the request's broker, starting one if needed.
func (s *Supervisor) worker(req request.MQTT) (*worker, error) {
	addr := req.Addr()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, protocol.Wrap(protocol.KindTransport, protocol.ProtocolMQTT, "enqueue", ErrSupervisorClosed, "publish rejected")
	}
	if w, ok := s.workers[addr]; ok {
		return w, nil
	}

	w := &worker{
		addr:   addr,
		broker: "tcp://" + addr,
		jobs:   make(chan publishJob),
		done:   make(chan struct{}),
	}
	s.workers[addr] = w
	s.wg.Add(1)
	go s.run(w)

	s.log.Debug("mqtt session worker started", "broker", addr)
	return w, nil
}

// run is the worker loop. It owns w.client exclusively.
func (s *Supervisor) run(w *worker) {
	defer s.wg.Done()
	defer s.disconnect(w)

	idle := time.NewTimer(s.opts.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case job := <-w.jobs:
			err := s.publish(w, job)
			job.result <- err
			if w.client == nil {
				w.lastFailure.Store(&connectFailure{err: err, at: time.Now()})
				s.failWaiting(w, err)
			}
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(s.opts.IdleTimeout)
		case <-idle.C:
			if s.retire(w) {
				s.log.Debug("mqtt session worker idle, stopping", "broker", w.addr)
				return
			}
		case <-w.done:
			return
		}
	}
}

// failWaiting hands the connect error to every publish already waiting on w,
// so callers queued behind a failed connect see its cause.
func (s *Supervisor) failWaiting(w *worker, err error) {
	defer w.connecting.Store(false)
	for {
		select {
		case job := <-w.jobs:
			job.result <- err
		default:
			return
		}
	}
}

// retire removes w from the supervisor. It reports false if w was already
// removed by Close, in which case w.done is closed and the loop exits there.
func (s *Supervisor) retire(w *worker) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workers[w.addr] != w {
		return false
	}
	delete(s.workers, w.addr)
	close(w.done)
	return true
}

func (s *Supervisor) publish(w *worker, job publishJob) error {
	if w.client == nil || !w.client.IsConnectionOpen() {
		if err := s.connect(w); err != nil {
			return err
		}
	}

	token := w.client.Publish(job.topic, byte(job.qos), false, job.payload)

	// Only a failure that is already known is reported; acknowledgement is not awaited.
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return protocol.Wrap(protocol.KindTransport, protocol.ProtocolMQTT, "publish", err, "publish failed")
		}
	default:
	}

	s.log.Debug("mqtt message handed to client",
		"broker", w.addr,
		"topic", job.topic,
		"qos", job.qos.String(),
		"bytes", len(job.payload))
	return nil
}

func (s *Supervisor) connect(w *worker) error {
	s.disconnect(w)

	opts := paho.NewClientOptions()
	opts.AddBroker(w.broker)
	opts.SetClientID(s.opts.ClientID)
	opts.SetKeepAlive(s.opts.KeepAlive)
	opts.SetConnectTimeout(s.opts.ConnectTimeout)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		s.log.Warn("mqtt connection lost", "broker", w.addr, "error", err)
	}

	w.connecting.Store(true)
	client := s.opts.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(s.opts.ConnectTimeout) {
		client.Disconnect(0)
		return protocol.Errorf(protocol.KindTimeout, protocol.ProtocolMQTT, "connect",
			"connect to %s timed out after %s", w.addr, s.opts.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return protocol.Wrap(protocol.KindTransport, protocol.ProtocolMQTT, "connect", err,
			fmt.Sprintf("connect to %s failed", w.addr))
	}

	w.client = client
	w.lastFailure.Store(nil)
	w.connecting.Store(false)
	if s.opts.Sessions != nil {
		s.opts.Sessions.Inc()
	}
	s.log.Info("mqtt session opened", "broker", w.addr, "client_id", s.opts.ClientID)
	return nil
}

func (s *Supervisor) disconnect(w *worker) {
	if w.client == nil {
		return
	}
	w.client.Disconnect(disconnectQuiesce)
	w.client = nil
	if s.opts.Sessions != nil {
		s.opts.Sessions.Dec()
	}
	s.log.Debug("mqtt session closed", "broker", w.addr)
}

// Sessions returns the number of live workers.
func (s *Supervisor) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workers)
}

// Close stops every worker and waits for them to disconnect, up to the
// context deadline. Publish fails after Close.
func (s *Supervisor) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for addr, w := range s.workers {
		delete(s.workers, addr)
		close(w.done)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mqtt supervisor shutdown: %w", ctx.Err())
	}
}

func contextError(ctx context.Context, op string) error {
	kind := protocol.KindTransport
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		kind = protocol.KindTimeout
	}
	return protocol.Wrap(kind, protocol.ProtocolMQTT, op, ctx.Err(), "publish aborted")
}
