// Package config loads omnisend configuration.
//
// Values are layered with the following precedence (highest to lowest):
//
//  1. Command-line flags (applied by the caller)
//  2. Environment variables (OMNISEND_* prefix), including a .env file
//  3. Config file: --config path, else .omnisend.yaml in the current
//     directory, else ~/.config/omnisend/config.yaml
//  4. Default values
//
// Example file:
//
//	log:
//	  level: debug
//	http:
//	  timeout: 10s
//	coap:
//	  timeout: 2s
//	  allowPut: true
package config
