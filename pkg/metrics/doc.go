// Package metrics exposes Prometheus instrumentation for the dispatcher.
//
// Collectors are registered on a caller-supplied registry so tests and
// embedded uses do not touch the global default:
//
//	reg := metrics.NewRegistry()
//	m := metrics.New(reg)
//	m.ObserveDispatch(protocol.ProtocolHTTP, err, time.Since(start))
//
// # Metrics
//
//   - omnisend_dispatch_total{protocol,outcome}: dispatches by protocol;
//     outcome is "ok" or the error kind (validation, transport, ...).
//   - omnisend_dispatch_duration_seconds{protocol}: dispatch latency.
//   - omnisend_mqtt_sessions: open MQTT broker sessions.
//
// Protocol label values are lowercase: http, mqtt, mqtt_sn, coap.
package metrics
