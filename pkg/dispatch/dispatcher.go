package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/getmockd/omnisend/internal/id"
	"github.com/getmockd/omnisend/pkg/coap"
	"github.com/getmockd/omnisend/pkg/httpsend"
	"github.com/getmockd/omnisend/pkg/logging"
	"github.com/getmockd/omnisend/pkg/metrics"
	"github.com/getmockd/omnisend/pkg/mqtt"
	"github.com/getmockd/omnisend/pkg/mqttsn"
	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/getmockd/omnisend/pkg/request"
	"github.com/getmockd/omnisend/pkg/requestlog"
)

// HTTPSender performs HTTP requests.
type HTTPSender interface {
	Send(ctx context.Context, req request.HTTP) (request.HTTPResult, error)
}

// MQTTPublisher publishes MQTT messages. Close releases its sessions.
type MQTTPublisher interface {
	Publish(ctx context.Context, req request.MQTT) (request.StatusResult, error)
	Close(ctx context.Context) error
}

// MQTTSNSender sends MQTT-SN datagrams.
type MQTTSNSender interface {
	Send(ctx context.Context, req request.MQTTSN) (request.StatusResult, error)
}

// CoAPExchanger performs CoAP request/reply exchanges.
type CoAPExchanger interface {
	Exchange(ctx context.Context, req request.CoAP) (request.CoAPResult, error)
}

// Interface compliance checks.
var (
	_ HTTPSender    = (*httpsend.Sender)(nil)
	_ MQTTPublisher = (*mqtt.Supervisor)(nil)
	_ MQTTSNSender  = (*mqttsn.Sender)(nil)
	_ CoAPExchanger = (*coap.Exchanger)(nil)
)

// Senders overrides the default per-protocol senders. Nil fields are built
// from Options.
type Senders struct {
	HTTP   HTTPSender
	MQTT   MQTTPublisher
	MQTTSN MQTTSNSender
	CoAP   CoAPExchanger
}

// Options configures a Dispatcher.
type Options struct {
	HTTP   httpsend.Options
	MQTT   mqtt.Options
	MQTTSN mqttsn.Options
	CoAP   coap.Options

	Senders Senders

	// Metrics records dispatch counts and latency. Nil disables metrics.
	Metrics *metrics.Metrics

	// History records every finished dispatch. Nil disables history.
	History requestlog.Logger

	// Logger receives per-request logs. Nil disables logging.
	Logger *slog.Logger
}

// Dispatcher routes requests to their protocol sender. It is safe for
// concurrent use.
type Dispatcher struct {
	http    HTTPSender
	mqtt    MQTTPublisher
	mqttsn  MQTTSNSender
	coap    CoAPExchanger
	metrics *metrics.Metrics
	history requestlog.Logger
	log     *slog.Logger
}

// New creates a Dispatcher.
func New(opts Options) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	log := opts.Logger

	s := opts.Senders
	if s.HTTP == nil {
		if opts.HTTP.Logger == nil {
			opts.HTTP.Logger = log.With("protocol", protocol.ProtocolHTTP.Label())
		}
		s.HTTP = httpsend.New(opts.HTTP)
	}
	if s.MQTT == nil {
		if opts.MQTT.Logger == nil {
			opts.MQTT.Logger = log.With("protocol", protocol.ProtocolMQTT.Label())
		}
		if opts.MQTT.Sessions == nil && opts.Metrics != nil {
			opts.MQTT.Sessions = opts.Metrics.Sessions()
		}
		s.MQTT = mqtt.NewSupervisor(opts.MQTT)
	}
	if s.MQTTSN == nil {
		if opts.MQTTSN.Logger == nil {
			opts.MQTTSN.Logger = log.With("protocol", protocol.ProtocolMQTTSN.Label())
		}
		s.MQTTSN = mqttsn.New(opts.MQTTSN)
	}
	if s.CoAP == nil {
		if opts.CoAP.Logger == nil {
			opts.CoAP.Logger = log.With("protocol", protocol.ProtocolCoAP.Label())
		}
		s.CoAP = coap.NewExchanger(opts.CoAP)
	}

	return &Dispatcher{
		http:    s.HTTP,
		mqtt:    s.MQTT,
		mqttsn:  s.MQTTSN,
		coap:    s.CoAP,
		metrics: opts.Metrics,
		history: opts.History,
		log:     log,
	}
}

// Dispatch sends req with the matching sender and returns its result.
func (d *Dispatcher) Dispatch(ctx context.Context, req request.Request) (resp request.Response, err error) {
	if req == nil {
		return nil, protocol.Validation("", "dispatch", "request is required")
	}

	p := req.Protocol()
	rid := id.UUID()
	start := time.Now()
	log := d.log.With("request_id", rid, "protocol", p.Label())

	defer func() {
		if r := recover(); r != nil {
			log.Error("sender panicked", "panic", r)
			resp, err = nil, protocol.Errorf(protocol.KindInternal, p, "dispatch", "internal error: %v", r)
		}

		elapsed := time.Since(start)
		d.metrics.ObserveDispatch(p, err, elapsed)
		if d.history != nil {
			d.history.Log(requestlog.NewEntry(rid, req, resp, err, start, elapsed))
		}
		if err != nil {
			log.Warn("dispatch failed",
				"kind", protocol.KindOf(err).String(),
				"error", err,
				"duration", elapsed)
			return
		}
		log.Debug("dispatch complete", "duration", elapsed)
	}()

	log.Debug("dispatch started")

	if err := req.Validate(); err != nil {
		return nil, err
	}

	switch r := req.(type) {
	case request.HTTP:
		res, err := d.http.Send(ctx, r)
		if err != nil {
			return nil, err
		}
		return res, nil
	case request.MQTT:
		res, err := d.mqtt.Publish(ctx, r)
		if err != nil {
			return nil, err
		}
		return res, nil
	case request.MQTTSN:
		res, err := d.mqttsn.Send(ctx, r)
		if err != nil {
			return nil, err
		}
		return res, nil
	case request.CoAP:
		res, err := d.coap.Exchange(ctx, r)
		if err != nil {
			return nil, err
		}
		return res, nil
	default:
		return nil, protocol.Errorf(protocol.KindProtocol, p, "dispatch", "unsupported protocol %q", p)
	}
}

// Invoke decodes a tagged request document, dispatches it and returns the
// response document. It is the boundary used by the API and the CLI.
func (d *Dispatcher) Invoke(ctx context.Context, data []byte) ([]byte, error) {
	req, err := request.Decode(data)
	if err != nil {
		return nil, err
	}

	resp, err := d.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return nil, protocol.Wrap(protocol.KindInternal, req.Protocol(), "encode", err, "failed to encode response")
	}
	return out, nil
}

// Close releases long-lived sessions. Dispatch must not be called afterwards.
func (d *Dispatcher) Close(ctx context.Context) error {
	if err := d.mqtt.Close(ctx); err != nil {
		return fmt.Errorf("close mqtt publisher: %w", err)
	}
	return nil
}
