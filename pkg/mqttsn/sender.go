package mqttsn

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/getmockd/omnisend/pkg/logging"
	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/getmockd/omnisend/pkg/request"
)

// DefaultWriteTimeout bounds the single write.
const DefaultWriteTimeout = 5 * time.Second

// Options configures a Sender.
type Options struct {
	WriteTimeout time.Duration

	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger
}

// Sender writes one datagram per call.
type Sender struct {
	timeout time.Duration
	log     *slog.Logger
}

// New creates a Sender.
func New(opts Options) *Sender {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Sender{timeout: opts.WriteTimeout, log: opts.Logger}
}

// Send writes req.Data unchanged to gateway:port.
func (s *Sender) Send(ctx context.Context, req request.MQTTSN) (request.StatusResult, error) {
	addr, err := resolve(ctx, req.Addr())
	if err != nil {
		return request.StatusResult{}, err
	}

	network := "udp4"
	if addr.IP.To4() == nil {
		network = "udp6"
	}
	conn, err := net.ListenUDP(network, nil)
	if err != nil {
		return request.StatusResult{}, protocol.Wrap(protocol.KindTransport, protocol.ProtocolMQTTSN, "bind", err, "failed to bind local socket")
	}
	defer conn.Close()

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return request.StatusResult{}, protocol.Wrap(protocol.KindTransport, protocol.ProtocolMQTTSN, "bind", err, "failed to set deadline")
	}

	n, err := conn.WriteToUDP([]byte(req.Data), addr)
	if err != nil {
		return request.StatusResult{}, protocol.Wrap(protocol.KindTransport, protocol.ProtocolMQTTSN, "send", err, "send failed")
	}

	s.log.Debug("mqtt-sn datagram sent", "gateway", addr.String(), "bytes", n)
	return request.Sent(), nil
}

func resolve(ctx context.Context, hostport string) (*net.UDPAddr, error) {
	if err := ctx.Err(); err != nil {
		return nil, protocol.Wrap(protocol.KindTransport, protocol.ProtocolMQTTSN, "resolve", err, "send aborted")
	}

	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return nil, protocol.Wrap(protocol.KindTransport, protocol.ProtocolMQTTSN, "resolve", err, "invalid gateway address")
	}

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err == nil && len(ips) == 0 {
		err = errors.New("no addresses")
	}
	if err != nil {
		return nil, protocol.Wrap(protocol.KindTransport, protocol.ProtocolMQTTSN, "resolve", err, "cannot resolve gateway "+host)
	}

	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(pick(ips).String(), port))
	if err != nil {
		return nil, protocol.Wrap(protocol.KindTransport, protocol.ProtocolMQTTSN, "resolve", err, "invalid gateway address")
	}
	return addr, nil
}

// pick prefers the first IPv4 address.
func pick(ips []net.IPAddr) net.IP {
	for _, ip := range ips {
		if ip.IP.To4() != nil {
			return ip.IP
		}
	}
	return ips[0].IP
}
