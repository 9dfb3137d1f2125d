// Package sandbox runs local targets for every supported protocol so
// requests can be tried without external infrastructure:
//
//   - an embedded MQTT broker
//   - an MQTT-SN sink that records datagrams
//   - a CoAP echo server that acknowledges with 2.05 Content and the
//     request payload
//   - an HTTP echo server: GET /ping answers "pong", /echo returns the
//     request as JSON
//
// Everything received is reported through OnEvent handlers.
package sandbox
