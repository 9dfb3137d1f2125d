package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	for _, id := range List() {
		t.Run(id, func(t *testing.T) {
			assert.True(t, Exists(id))
			data, err := Get(id)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		})
	}

	_, err := Get("DEFAULT")
	assert.NoError(t, err)

	_, err = Get("crud")
	assert.Error(t, err)
	assert.False(t, Exists("crud"))
}

func TestFormatList(t *testing.T) {
	out := FormatList()
	for _, tmpl := range AvailableTemplates {
		assert.Contains(t, out, tmpl.ID)
		assert.Contains(t, out, tmpl.Description)
	}
}
