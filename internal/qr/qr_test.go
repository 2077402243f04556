package qr_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventgate/internal/qr"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47}

func TestRender(t *testing.T) {
	png, err := qr.Render("signed.ticket.token")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngHeader), "output should be a PNG")
}

func TestRenderEmptyToken(t *testing.T) {
	_, err := qr.Render("")
	assert.Error(t, err)
}
