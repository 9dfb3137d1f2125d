package config

import (
	"github.com/getmockd/omnisend/pkg/coap"
	"github.com/getmockd/omnisend/pkg/dispatch"
	"github.com/getmockd/omnisend/pkg/httpsend"
	"github.com/getmockd/omnisend/pkg/mqtt"
	"github.com/getmockd/omnisend/pkg/mqttsn"
)

// DispatchOptions maps the sender settings onto dispatcher options. Metrics,
// History and Logger are left for the caller.
func (c *Config) DispatchOptions() dispatch.Options {
	return dispatch.Options{
		HTTP: httpsend.Options{Timeout: c.HTTP.Timeout},
		MQTT: mqtt.Options{
			ClientID:       c.MQTT.ClientID,
			KeepAlive:      c.MQTT.KeepAlive,
			ConnectTimeout: c.MQTT.ConnectTimeout,
			IdleTimeout:    c.MQTT.IdleTimeout,
			EnqueueTimeout: c.MQTT.EnqueueTimeout,
		},
		MQTTSN: mqttsn.Options{WriteTimeout: c.MQTTSN.WriteTimeout},
		CoAP: coap.Options{
			Timeout:    c.CoAP.Timeout,
			BufferSize: c.CoAP.BufferSize,
			AllowPut:   c.CoAP.AllowPut,
		},
	}
}
