package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/getmockd/omnisend/pkg/coap"
	"github.com/getmockd/omnisend/pkg/httpsend"
	"github.com/getmockd/omnisend/pkg/mqtt"
	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/getmockd/omnisend/pkg/request"
	"github.com/getmockd/omnisend/pkg/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	mu  sync.Mutex
	all []sandbox.Event
}

func (r *received) add(e sandbox.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, e)
}

func (r *received) count(p protocol.Protocol) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.all {
		if e.Protocol == p {
			n++
		}
	}
	return n
}

func (r *received) last(p protocol.Protocol) (sandbox.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.all) - 1; i >= 0; i-- {
		if r.all[i].Protocol == p {
			return r.all[i], true
		}
	}
	return sandbox.Event{}, false
}

func setupE2E(t *testing.T) (*Dispatcher, *sandbox.Sandbox, *received) {
	t.Helper()

	sb := sandbox.New(sandbox.Ephemeral(), nil)
	rec := &received{}
	sb.OnEvent(rec.add)
	require.NoError(t, sb.Start(context.Background()))

	d := New(Options{
		HTTP: httpsend.Options{Timeout: 5 * time.Second},
		MQTT: mqtt.Options{ConnectTimeout: 2 * time.Second},
		CoAP: coap.Options{Timeout: 2 * time.Second},
	})

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, d.Close(ctx))
		assert.NoError(t, sb.Close())
	})
	return d, sb, rec
}

func splitAddr(t *testing.T, addr string) (string, uint16) {
	t.Helper()
	host, portText, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.ParseUint(portText, 10, 16)
	require.NoError(t, err)
	return host, uint16(port)
}

// Scenario: HTTP GET against a server answering "pong".
func TestE2E_HTTPPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ping" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("pong"))
	}))
	defer srv.Close()

	d := New(Options{})
	in := fmt.Sprintf(`{"protocol":"HTTP","method":"GET","url":%q,"headers":null,"body":null}`, srv.URL+"/ping")

	out, err := d.Invoke(context.Background(), []byte(in))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":200,"body":"pong"}`, string(out))
}

// Scenario: MQTT-SN datagram reaches the listener byte for byte.
func TestE2E_MQTTSN(t *testing.T) {
	d, sb, rec := setupE2E(t)
	host, port := splitAddr(t, sb.MQTTSNAddr())

	in := fmt.Sprintf(`{"protocol":"MQTT_SN","gateway":%q,"port":%d,"data":"hello"}`, host, port)
	out, err := d.Invoke(context.Background(), []byte(in))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"sent"}`, string(out))

	require.Eventually(t, func() bool { return rec.count(protocol.ProtocolMQTTSN) == 1 }, 2*time.Second, 10*time.Millisecond)
	e, _ := rec.last(protocol.ProtocolMQTTSN)
	assert.Equal(t, []byte("hello"), e.Payload)

	// No second datagram.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, rec.count(protocol.ProtocolMQTTSN))
}

// Scenario: CoAP PUT is refused without touching the network.
func TestE2E_CoAPPutRejected(t *testing.T) {
	d, sb, rec := setupE2E(t)

	in := fmt.Sprintf(`{"protocol":"COAP","method":"PUT","host":%q,"path":"x","payload":null}`, sb.CoAPAddr())
	out, err := d.Invoke(context.Background(), []byte(in))
	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, protocol.IsKind(err, protocol.KindProtocol))
	assert.Contains(t, err.Error(), "PUT")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, rec.count(protocol.ProtocolCoAP))
}

func TestE2E_CoAPEcho(t *testing.T) {
	d, sb, rec := setupE2E(t)

	resp, err := d.Dispatch(context.Background(), request.CoAP{
		Method:  "POST",
		Host:    sb.CoAPAddr(),
		Path:    "sensor/temp",
		Payload: request.String("21.5"),
	})
	require.NoError(t, err)

	res, ok := resp.(request.CoAPResult)
	require.True(t, ok)
	assert.Contains(t, res.Response, "21.5")

	e, ok := rec.last(protocol.ProtocolCoAP)
	require.True(t, ok)
	assert.Equal(t, "sensor/temp", e.Target)
}

func TestE2E_MQTTPublish(t *testing.T) {
	d, sb, rec := setupE2E(t)
	host, port := splitAddr(t, sb.MQTTAddr())

	in := fmt.Sprintf(`{"protocol":"MQTT","broker":%q,"port":%d,"topic":"home/temp","qos":255,"message":"22"}`, host, port)
	out, err := d.Invoke(context.Background(), []byte(in))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"published"}`, string(out))

	require.Eventually(t, func() bool { return rec.count(protocol.ProtocolMQTT) == 1 }, 5*time.Second, 20*time.Millisecond)
	e, _ := rec.last(protocol.ProtocolMQTT)
	assert.Equal(t, "home/temp", e.Target)
	assert.Equal(t, []byte("22"), e.Payload)
	assert.Equal(t, mqtt.DefaultClientID, e.From)
}

func TestE2E_HTTPEchoThroughSandbox(t *testing.T) {
	d, sb, _ := setupE2E(t)

	resp, err := d.Dispatch(context.Background(), request.HTTP{
		Method: "POST",
		URL:    sb.HTTPURL() + "/echo",
		Headers: request.Headers{
			{Name: "X-B", Value: "2"},
			{Name: "X-A", Value: "1"},
		},
		Body: request.String("data"),
	})
	require.NoError(t, err)

	res := resp.(request.HTTPResult)
	assert.Equal(t, http.StatusOK, res.Status)

	var echo sandbox.EchoResponse
	require.NoError(t, json.Unmarshal([]byte(res.Body), &echo))
	assert.Equal(t, "POST", echo.Method)
	assert.Equal(t, "data", echo.Body)
	assert.Equal(t, []string{"1"}, echo.Headers["X-A"])
	assert.Equal(t, []string{"2"}, echo.Headers["X-B"])
}

// N concurrent calls over every protocol return independent results.
func TestE2E_ConcurrentMixed(t *testing.T) {
	d, sb, rec := setupE2E(t)
	mqttHost, mqttPort := splitAddr(t, sb.MQTTAddr())
	snHost, snPort := splitAddr(t, sb.MQTTSNAddr())

	const n = 10
	type result struct {
		want protocol.Protocol
		resp request.Response
		err  error
	}
	results := make(chan result, 4*n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		reqs := []request.Request{
			request.HTTP{Method: "GET", URL: sb.HTTPURL() + "/ping"},
			request.MQTT{Broker: mqttHost, Port: mqttPort, Topic: "mix", QoS: uint8(i % 3), Message: strconv.Itoa(i)},
			request.MQTTSN{Gateway: snHost, Port: snPort, Data: strconv.Itoa(i)},
			request.CoAP{Method: "POST", Host: sb.CoAPAddr(), Path: "mix", Payload: request.String(strconv.Itoa(i))},
		}
		for _, req := range reqs {
			wg.Add(1)
			go func(req request.Request) {
				defer wg.Done()
				resp, err := d.Dispatch(context.Background(), req)
				results <- result{want: req.Protocol(), resp: resp, err: err}
			}(req)
		}
	}
	wg.Wait()
	close(results)

	for r := range results {
		require.NoError(t, r.err, r.want.String())
		assert.Equal(t, r.want, r.resp.Protocol())
		if h, ok := r.resp.(request.HTTPResult); ok {
			assert.Equal(t, "pong", h.Body)
		}
	}

	require.Eventually(t, func() bool {
		return rec.count(protocol.ProtocolMQTT) == n && rec.count(protocol.ProtocolMQTTSN) == n
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, n, rec.count(protocol.ProtocolCoAP))
}

func TestE2E_TransportErrors(t *testing.T) {
	d := New(Options{
		MQTT: mqtt.Options{ConnectTimeout: time.Second},
	})
	defer d.Close(context.Background())

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closedPort := uint16(l.Addr().(*net.TCPAddr).Port)
	l.Close()

	_, err = d.Dispatch(context.Background(), request.HTTP{Method: "GET", URL: fmt.Sprintf("http://127.0.0.1:%d/", closedPort)})
	assert.True(t, protocol.IsKind(err, protocol.KindTransport), "http: %v", err)

	_, err = d.Dispatch(context.Background(), request.MQTT{Broker: "127.0.0.1", Port: closedPort, Topic: "t"})
	assert.Error(t, err)
	k := protocol.KindOf(err)
	assert.True(t, k == protocol.KindTransport || k == protocol.KindTimeout, "mqtt: %v", err)
}
