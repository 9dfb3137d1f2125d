// Package request defines the tagged request model accepted by the dispatcher
// and the normalized responses it returns.
//
// A Request is one of four variants, selected by the "protocol" tag of its
// JSON form:
//
//	{ "protocol": "HTTP",    "method": "GET", "url": "http://...", "headers": {...}, "body": "..." }
//	{ "protocol": "MQTT",    "broker": "...", "port": 1883, "topic": "...", "qos": 1, "message": "..." }
//	{ "protocol": "MQTT_SN", "gateway": "...", "port": 10000, "data": "..." }
//	{ "protocol": "COAP",    "method": "GET", "host": "host:5683", "path": "a/b", "payload": "..." }
//
// The variant set is closed: Request has an unexported method, so only the
// types in this package satisfy it and a type switch over HTTP, MQTT, MQTTSN
// and CoAP covers every request.
//
// Decode validates input against the request JSON Schema before decoding, so
// missing fields and out-of-range ports or QoS values are rejected as
// validation errors rather than silently zeroed.
package request
