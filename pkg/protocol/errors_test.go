package protocol

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Rendering(t *testing.T) {
	err := Validation(ProtocolCoAP, "parse", "unsupported CoAP method %q", "PUT")
	assert.Equal(t, `unsupported CoAP method "PUT"`, err.Error())

	cause := errors.New("connection refused")
	wrapped := Wrap(KindTransport, ProtocolHTTP, "send", cause, "request failed")
	assert.Equal(t, "request failed: connection refused", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)

	bare := &Error{Kind: KindTimeout}
	assert.Equal(t, "timeout error", bare.Error())
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(KindTransport, ProtocolHTTP, "send", nil, "request failed"))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), KindInternal},
		{"validation", Validation(ProtocolHTTP, "parse", "bad"), KindValidation},
		{"wrapped twice", fmt.Errorf("outer: %w", Wrap(KindTimeout, ProtocolCoAP, "receive", errors.New("i/o timeout"), "no reply")), KindTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIs_KindSentinels(t *testing.T) {
	err := Wrap(KindTimeout, ProtocolCoAP, "receive", errors.New("i/o timeout"), "no reply")

	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrTransport)
	assert.True(t, IsKind(err, KindTimeout))
	assert.False(t, IsKind(nil, KindTimeout))

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ProtocolCoAP, pe.Protocol)
	assert.Equal(t, "receive", pe.Op)
}

func TestIs_SpecificErrorsDoNotMatchEachOther(t *testing.T) {
	a := Validation(ProtocolHTTP, "parse", "a")
	b := Validation(ProtocolHTTP, "parse", "b")
	assert.NotErrorIs(t, a, b)
	assert.ErrorIs(t, a, a)
}
