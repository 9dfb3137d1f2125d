package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapQoS(t *testing.T) {
	tests := []struct {
		in   uint8
		want QoS
	}{
		{0, AtMostOnce},
		{1, AtLeastOnce},
		{2, ExactlyOnce},
		{3, ExactlyOnce},
		{128, ExactlyOnce},
		{255, ExactlyOnce},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapQoS(tt.in), "MapQoS(%d)", tt.in)
	}
}

func TestMapQoS_FullRangeIsValid(t *testing.T) {
	for i := 0; i <= 255; i++ {
		q := MapQoS(uint8(i))
		assert.LessOrEqual(t, byte(q), byte(ExactlyOnce))
	}
}

func TestQoS_String(t *testing.T) {
	assert.Equal(t, "at-most-once", AtMostOnce.String())
	assert.Equal(t, "at-least-once", AtLeastOnce.String())
	assert.Equal(t, "exactly-once", ExactlyOnce.String())
}
