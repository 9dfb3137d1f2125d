// Package mqttsn sends raw datagrams to an MQTT-SN gateway. A send is fire
// and forget: one datagram leaves an ephemeral socket and nothing is read
// back.
package mqttsn
