// Package flags provides reusable flag types for CLI commands.
package flags

import (
	"fmt"
	"strconv"
	"strings"
)

// StringSlice implements pflag.Value for repeatable string flags. Unlike
// cobra's StringSlice it never splits on commas, so header values such as
// "Accept: a, b" survive intact.
type StringSlice []string

// String returns the string representation of the flag value.
func (s *StringSlice) String() string {
	return strings.Join(*s, ",")
}

// Set appends a value to the slice.
func (s *StringSlice) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// Type specifies the type label for Cobra flags.
func (s *StringSlice) Type() string {
	return "stringSlice"
}

// QoS implements pflag.Value for the MQTT qos byte. Any value in 0..255 is
// accepted; mapping of values above 2 happens in the publisher.
type QoS uint8

// String returns the decimal value.
func (q *QoS) String() string {
	return strconv.Itoa(int(*q))
}

// Set parses a decimal value in 0..255.
func (q *QoS) Set(value string) error {
	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 8)
	if err != nil {
		return fmt.Errorf("qos must be between 0 and 255: %q", value)
	}
	*q = QoS(n)
	return nil
}

// Type specifies the type label for Cobra flags.
func (q *QoS) Type() string {
	return "uint8"
}
