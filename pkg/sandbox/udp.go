package sandbox

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/getmockd/omnisend/pkg/coap"
	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/plgd-dev/go-coap/v3/message/codes"
)

const datagramSize = 2048

// serveMQTTSN records every datagram. It returns nil once the socket is
// closed by shutdown.
func (s *Sandbox) serveMQTTSN(ctx context.Context) error {
	buf := make([]byte, datagramSize)
	for {
		n, from, err := s.snConn.ReadFromUDP(buf)
		if err != nil {
			return readLoopError(ctx, "mqtt-sn sink", err)
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])

		s.log.Debug("mqtt-sn datagram received", "from", from.String(), "bytes", n)
		s.emit(Event{Protocol: protocol.ProtocolMQTTSN, From: from.String(), Payload: payload})
	}
}

// serveCoAP answers each request with a piggybacked 2.05 Content carrying
// the request payload. Undecodable datagrams are dropped.
func (s *Sandbox) serveCoAP(ctx context.Context) error {
	buf := make([]byte, datagramSize)
	for {
		n, from, err := s.coapConn.ReadFromUDP(buf)
		if err != nil {
			return readLoopError(ctx, "coap echo", err)
		}

		req, err := coap.DecodeRequest(ctx, buf[:n])
		if err != nil {
			s.log.Debug("coap datagram dropped", "from", from.String(), "error", err)
			continue
		}

		s.log.Debug("coap request received",
			"from", from.String(),
			"code", req.Code.String(),
			"path", req.Path,
			"bytes", len(req.Payload))
		s.emit(Event{Protocol: protocol.ProtocolCoAP, From: from.String(), Target: req.Path, Payload: req.Payload})

		reply, err := coap.EncodeReply(ctx, req, codes.Content, req.Payload)
		if err != nil {
			s.log.Warn("coap reply encoding failed", "error", err)
			continue
		}
		if _, err := s.coapConn.WriteToUDP(reply, from); err != nil {
			s.log.Warn("coap reply failed", "to", from.String(), "error", err)
		}
	}
}

func readLoopError(ctx context.Context, target string, err error) error {
	if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("%s: %w", target, err)
}
