package mqttsn

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/getmockd/omnisend/pkg/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenUDP(t *testing.T) *net.UDPConn {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readOne(t *testing.T, conn *net.UDPConn) []byte {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 2048)
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)
	return buf[:n]
}

func TestSender_Send(t *testing.T) {
	conn := listenUDP(t)
	port := uint16(conn.LocalAddr().(*net.UDPAddr).Port)

	s := New(Options{})
	res, err := s.Send(context.Background(), request.MQTTSN{Gateway: "127.0.0.1", Port: port, Data: "hello"})
	require.NoError(t, err)
	assert.Equal(t, request.StatusSent, res.Status)
	assert.Equal(t, protocol.ProtocolMQTTSN, res.Protocol())

	assert.Equal(t, []byte("hello"), readOne(t, conn))

	// Exactly one datagram.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = conn.ReadFromUDP(make([]byte, 16))
	assert.Error(t, err)
}

func TestSender_BytesUnchanged(t *testing.T) {
	conn := listenUDP(t)
	port := uint16(conn.LocalAddr().(*net.UDPAddr).Port)
	s := New(Options{})

	tests := []struct {
		name string
		data string
	}{
		{"mqtt-sn publish frame", "\x07\x0c\x00\x00\x01\x00\x01"},
		{"utf8", "température"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Send(context.Background(), request.MQTTSN{Gateway: "127.0.0.1", Port: port, Data: tt.data})
			require.NoError(t, err)
			assert.Equal(t, []byte(tt.data), readOne(t, conn))
		})
	}
}

func TestSender_Localhost(t *testing.T) {
	conn := listenUDP(t)
	port := uint16(conn.LocalAddr().(*net.UDPAddr).Port)

	_, err := New(Options{}).Send(context.Background(), request.MQTTSN{Gateway: "localhost", Port: port, Data: "x"})
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), readOne(t, conn))
}

func TestSender_UnresolvableGateway(t *testing.T) {
	_, err := New(Options{}).Send(context.Background(), request.MQTTSN{Gateway: "gateway.invalid", Port: 10000, Data: "x"})
	require.Error(t, err)
	assert.True(t, protocol.IsKind(err, protocol.KindTransport), "got %v", err)
}

func TestSender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}).Send(ctx, request.MQTTSN{Gateway: "127.0.0.1", Port: 10000, Data: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
