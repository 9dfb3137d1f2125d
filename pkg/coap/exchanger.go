package coap

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/getmockd/omnisend/pkg/logging"
	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/getmockd/omnisend/pkg/request"
	"github.com/getmockd/omnisend/pkg/util"
)

// Defaults for Options.
const (
	DefaultTimeout    = 5 * time.Second
	DefaultBufferSize = 1500
)

// Options configures an Exchanger.
type Options struct {
	// Timeout bounds the wait for the reply datagram.
	Timeout time.Duration

	// BufferSize is the receive buffer; longer replies are truncated.
	BufferSize int

	// AllowPut enables the PUT method.
	AllowPut bool

	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger
}

// Exchanger performs one CoAP request/reply per call. It holds no sockets
// between calls and is safe for concurrent use.
type Exchanger struct {
	opts Options
	log  *slog.Logger
}

// NewExchanger creates an Exchanger.
func NewExchanger(opts Options) *Exchanger {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Exchanger{opts: opts, log: opts.Logger}
}

// Exchange sends req and returns the first datagram received, decoded as
// text. The method is checked first, then the message is encoded and the
// host resolved, all before any socket is opened.
func (e *Exchanger) Exchange(ctx context.Context, req request.CoAP) (request.CoAPResult, error) {
	method, err := ParseMethod(req.Method, e.opts.AllowPut)
	if err != nil {
		return request.CoAPResult{}, err
	}

	packet, err := EncodeRequest(ctx, method, req.Path, req.PayloadBytes())
	if err != nil {
		return request.CoAPResult{}, err
	}

	addr, err := resolve(ctx, req.Host)
	if err != nil {
		return request.CoAPResult{}, err
	}

	network := "udp4"
	if addr.IP.To4() == nil {
		network = "udp6"
	}
	conn, err := net.ListenUDP(network, nil)
	if err != nil {
		return request.CoAPResult{}, protocol.Wrap(protocol.KindTransport, protocol.ProtocolCoAP, "bind", err, "failed to bind local socket")
	}
	defer conn.Close()

	deadline := time.Now().Add(e.opts.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return request.CoAPResult{}, protocol.Wrap(protocol.KindTransport, protocol.ProtocolCoAP, "bind", err, "failed to set deadline")
	}

	// Cancelling ctx unblocks the read.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := conn.WriteToUDP(packet, addr); err != nil {
		return request.CoAPResult{}, e.ioError(ctx, "send", err)
	}

	e.log.Debug("coap request sent",
		"method", req.Method,
		"addr", addr.String(),
		"path", req.Path,
		"bytes", len(packet))

	buf := make([]byte, e.opts.BufferSize)
	n, from, err := conn.ReadFromUDP(buf)
	if err != nil {
		return request.CoAPResult{}, e.ioError(ctx, "receive", err)
	}

	e.log.Debug("coap reply received", "from", from.String(), "bytes", n)
	return request.CoAPResult{Response: util.LossyString(buf[:n])}, nil
}

// ioError classifies a socket error, giving precedence to the context.
func (e *Exchanger) ioError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return protocol.Wrap(protocol.KindTransport, protocol.ProtocolCoAP, op, ctx.Err(), "exchange aborted")
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return protocol.Errorf(protocol.KindTimeout, protocol.ProtocolCoAP, op,
			"no reply within %s", e.opts.Timeout)
	default:
		return protocol.Wrap(protocol.KindTransport, protocol.ProtocolCoAP, op, err, op+" failed")
	}
}

// resolve turns "host:port" into one UDP address, preferring IPv4.
func resolve(ctx context.Context, hostport string) (*net.UDPAddr, error) {
	host, portText, err := net.SplitHostPort(hostport)
	if err != nil {
		return nil, protocol.Validation(protocol.ProtocolCoAP, "resolve", "invalid host %q: %v", hostport, err)
	}
	port, err := net.DefaultResolver.LookupPort(ctx, "udp", portText)
	if err != nil {
		return nil, protocol.Validation(protocol.ProtocolCoAP, "resolve", "invalid port %q", portText)
	}

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil || len(ips) == 0 {
		return nil, protocol.Validation(protocol.ProtocolCoAP, "resolve", "invalid host %q: no addresses", hostport)
	}

	chosen := ips[0]
	for _, ip := range ips {
		if ip.IP.To4() != nil {
			chosen = ip
			break
		}
	}
	return &net.UDPAddr{IP: chosen.IP, Port: port, Zone: chosen.Zone}, nil
}
