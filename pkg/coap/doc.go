// Package coap builds CoAP request datagrams and performs a single
// request/reply exchange over UDP.
//
// The codec is a thin layer over go-coap's message pool:
//
//	data, err := coap.EncodeRequest(ctx, codes.GET, "sensor/temp", nil)
//	req, err := coap.DecodeRequest(ctx, data)
//
// An Exchanger sends one confirmable request and waits, bounded by its
// timeout, for exactly one reply datagram. The reply is returned as text
// without interpretation.
package coap
