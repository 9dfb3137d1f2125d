package mqtt

import "fmt"

// QoS is an MQTT delivery guarantee.
type QoS byte

// QoS levels.
const (
	AtMostOnce  QoS = 0
	AtLeastOnce QoS = 1
	ExactlyOnce QoS = 2
)

// MapQoS maps a requested QoS number to a delivery guarantee. Values other
// than 0 and 1 select exactly-once; out-of-range input is not rejected.
func MapQoS(q uint8) QoS {
	switch q {
	case 0:
		return AtMostOnce
	case 1:
		return AtLeastOnce
	default:
		return ExactlyOnce
	}
}

// String returns the name of the guarantee.
func (q QoS) String() string {
	switch q {
	case AtMostOnce:
		return "at-most-once"
	case AtLeastOnce:
		return "at-least-once"
	case ExactlyOnce:
		return "exactly-once"
	default:
		return fmt.Sprintf("qos(%d)", byte(q))
	}
}
