// Package cli provides the command-line interface for omnisend.
//
// The cli package implements the omnisend command tree:
//   - send: Send a request described by a JSON document
//   - http: Send one HTTP request built from flags
//   - mqtt: Publish one MQTT message
//   - mqttsn: Send one MQTT-SN datagram
//   - coap: Send one CoAP request and print the reply
//   - serve: Start the HTTP API (optionally with the sandbox)
//   - sandbox: Run local targets for every protocol
//   - schema: Print or check against the request JSON Schema
//   - protocols: List supported protocols
//   - init: Create a starter config file
//   - version: Show omnisend version
//
// Help topics (omnisend help <topic>): request, errors, config, targets.
//
// Every command that sends or serves loads the layered configuration from
// internal/config first. Persistent flags --log-level and --log-format
// override the loaded log settings; --json switches command output, and
// error reports, to JSON.
//
// Usage:
//
//	omnisend http http://127.0.0.1:8080/ping
//	omnisend mqtt --qos 1 sensors/temp 21.5
//	omnisend mqttsn hello
//	omnisend coap -X POST -d hi 127.0.0.1:5683 echo
//	omnisend send -f request.json
//	omnisend serve --sandbox
package cli
