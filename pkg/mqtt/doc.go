// Package mqtt publishes messages to MQTT brokers and provides an embedded
// broker for local targets and tests.
//
// # Publishing
//
// A Supervisor owns one session worker per broker address. Publish hands the
// message to that worker over a channel; the worker keeps the client's
// network loop alive, connects on first use and enqueues the publish locally.
// Publish returns as soon as the client has accepted the message, without
// waiting for the broker's acknowledgement:
//
//	sup := mqtt.NewSupervisor(mqtt.Options{ClientID: "omnisend-client"})
//	defer sup.Close(context.Background())
//
//	res, err := sup.Publish(ctx, request.MQTT{
//	    Broker: "localhost", Port: 1883, Topic: "sensors/temp", QoS: 1, Message: "21.5",
//	})
//
// Workers that see no traffic for Options.IdleTimeout disconnect and exit, so
// the number of live sessions is bounded by the number of distinct brokers in
// recent use.
//
// # QoS
//
// MapQoS maps the numeric request QoS: 0 is at-most-once, 1 at-least-once and
// every other value exactly-once.
//
// # Embedded broker
//
// Broker wraps mochi-mqtt. It accepts every connection and reports each
// received publish to registered handlers:
//
//	b, _ := mqtt.NewBroker(mqtt.BrokerConfig{Address: "127.0.0.1:1883"})
//	b.OnMessage(func(m mqtt.Message) { log.Println(m.Topic, string(m.Payload)) })
//	_ = b.Start(ctx)
//	defer b.Stop(ctx, 5*time.Second)
package mqtt
