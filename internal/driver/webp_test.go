package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebPDriver_Identity(t *testing.T) {
	d := NewWebPDriver()
	assert.Equal(t, "WEBP", d.Name())
	assert.Equal(t, "webp", d.DefaultExtension())
	assert.Equal(t, []string{"webp"}, d.Extensions())
}

func TestWebPDriver_ProbeRejectsNonRIFF(t *testing.T) {
	d := NewWebPDriver()
	assert.False(t, d.Probe("/nonexistent/file.webp"))
}
