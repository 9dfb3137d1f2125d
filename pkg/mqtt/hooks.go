package mqtt

import (
	"bytes"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/packets"
)

// messageHook reports every inbound publish to the broker's handlers.
type messageHook struct {
	mochi.HookBase
	broker *Broker
}

// ID returns the hook identifier
func (h *messageHook) ID() string {
	return "omnisend-message-hook"
}

// Provides indicates which hook methods this hook provides
func (h *messageHook) Provides(b byte) bool {
	return bytes.Contains([]byte{mochi.OnPublish}, []byte{b})
}

// OnPublish passes the packet through unchanged after notifying handlers.
func (h *messageHook) OnPublish(cl *mochi.Client, pk packets.Packet) (packets.Packet, error) {
	payload := make([]byte, len(pk.Payload))
	copy(payload, pk.Payload)

	h.broker.log.Debug("mqtt publish received",
		"client_id", cl.ID,
		"topic", pk.TopicName,
		"qos", pk.FixedHeader.Qos,
		"bytes", len(payload))

	h.broker.notify(Message{
		ClientID: cl.ID,
		Topic:    pk.TopicName,
		Payload:  payload,
		QoS:      QoS(pk.FixedHeader.Qos),
		Retain:   pk.FixedHeader.Retain,
	})
	return pk, nil
}
