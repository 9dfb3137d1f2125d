package coap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/plgd-dev/go-coap/v3/message"
	"github.com/plgd-dev/go-coap/v3/message/codes"
	"github.com/plgd-dev/go-coap/v3/message/pool"
	"github.com/plgd-dev/go-coap/v3/udp/coder"
)

// Message is a decoded CoAP datagram.
type Message struct {
	Type      message.Type
	Code      codes.Code
	MessageID int32
	Token     message.Token
	Path      string
	Payload   []byte
}

// ParseMethod maps a method name to a request code. GET and POST are
// supported; PUT only when allowPut is set. Names are matched exactly.
func ParseMethod(s string, allowPut bool) (codes.Code, error) {
	switch s {
	case "GET":
		return codes.GET, nil
	case "POST":
		return codes.POST, nil
	case "PUT":
		if allowPut {
			return codes.PUT, nil
		}
	}
	return 0, protocol.Unsupported(protocol.ProtocolCoAP, "parse", "unsupported CoAP method: %q", s)
}

// EncodeRequest serializes a confirmable request with a random message id
// and token. path is split into Uri-Path options.
func EncodeRequest(ctx context.Context, method codes.Code, path string, payload []byte) ([]byte, error) {
	token, err := message.GetToken()
	if err != nil {
		return nil, protocol.Wrap(protocol.KindSerialization, protocol.ProtocolCoAP, "encode", err, "failed to generate token")
	}

	msg := pool.NewMessage(ctx)
	defer msg.Reset()

	msg.SetCode(method)
	msg.SetType(message.Confirmable)
	msg.SetMessageID(message.GetMID())
	msg.SetToken(token)
	if path = strings.Trim(path, "/"); path != "" {
		if err := msg.SetPath(path); err != nil {
			return nil, protocol.Wrap(protocol.KindSerialization, protocol.ProtocolCoAP, "encode", err,
				fmt.Sprintf("invalid path %q", path))
		}
	}
	if payload != nil {
		msg.SetBody(bytes.NewReader(payload))
	}

	data, err := msg.MarshalWithEncoder(coder.DefaultCoder)
	if err != nil {
		return nil, protocol.Wrap(protocol.KindSerialization, protocol.ProtocolCoAP, "encode", err, "failed to marshal CoAP message")
	}
	return data, nil
}

// EncodeReply serializes a piggybacked acknowledgement for req carrying code
// and payload.
func EncodeReply(ctx context.Context, req Message, code codes.Code, payload []byte) ([]byte, error) {
	msg := pool.NewMessage(ctx)
	defer msg.Reset()

	msg.SetCode(code)
	msg.SetType(message.Acknowledgement)
	msg.SetMessageID(req.MessageID)
	msg.SetToken(req.Token)
	if len(payload) > 0 {
		msg.SetContentFormat(message.TextPlain)
		msg.SetBody(bytes.NewReader(payload))
	}

	data, err := msg.MarshalWithEncoder(coder.DefaultCoder)
	if err != nil {
		return nil, protocol.Wrap(protocol.KindSerialization, protocol.ProtocolCoAP, "encode", err, "failed to marshal CoAP reply")
	}
	return data, nil
}

// DecodeMessage parses one datagram. The path is returned without its
// leading slash.
func DecodeMessage(ctx context.Context, data []byte) (Message, error) {
	msg := pool.NewMessage(ctx)
	defer msg.Reset()

	if _, err := msg.UnmarshalWithDecoder(coder.DefaultCoder, data); err != nil {
		return Message{}, protocol.Wrap(protocol.KindSerialization, protocol.ProtocolCoAP, "decode", err, "failed to unmarshal CoAP message")
	}

	path, err := msg.Options().Path()
	if err != nil && !errors.Is(err, message.ErrOptionNotFound) {
		return Message{}, protocol.Wrap(protocol.KindSerialization, protocol.ProtocolCoAP, "decode", err, "invalid Uri-Path")
	}

	body, err := msg.ReadBody()
	if err != nil {
		return Message{}, protocol.Wrap(protocol.KindSerialization, protocol.ProtocolCoAP, "decode", err, "failed to read payload")
	}

	token := make(message.Token, len(msg.Token()))
	copy(token, msg.Token())

	return Message{
		Type:      msg.Type(),
		Code:      msg.Code(),
		MessageID: msg.MessageID(),
		Token:     token,
		Path:      strings.TrimPrefix(path, "/"),
		Payload:   body,
	}, nil
}

// DecodeRequest is DecodeMessage restricted to request codes.
func DecodeRequest(ctx context.Context, data []byte) (Message, error) {
	m, err := DecodeMessage(ctx, data)
	if err != nil {
		return Message{}, err
	}
	if !isRequest(m.Code) {
		return Message{}, protocol.Errorf(protocol.KindProtocol, protocol.ProtocolCoAP, "decode",
			"not a request: %v", m.Code)
	}
	return m, nil
}

// isRequest reports whether c is in the request class (0.01-0.31).
func isRequest(c codes.Code) bool {
	return c != codes.Empty && c>>5 == 0
}
