package execmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	if !Supported {
		_, err := Load([]byte{0xC3})
		require.ErrorIs(t, err, ErrUnsupported)
		return
	}

	code := []byte{0x90, 0x90, 0xC3}
	page, err := Load(code)
	require.NoError(t, err)
	assert.NotZero(t, page.Addr())
	assert.Equal(t, 3, page.Len())

	require.NoError(t, page.Free())
	assert.Zero(t, page.Addr())
	assert.Zero(t, page.Len())
	require.NoError(t, page.Free(), "double free is a no-op")
}

func TestNilPage(t *testing.T) {
	var page *Page
	assert.Zero(t, page.Addr())
	assert.Zero(t, page.Len())
}

func TestLoadEmpty(t *testing.T) {
	_, err := Load(nil)
	assert.Error(t, err)
}

func TestRoundUp(t *testing.T) {
	assert.Equal(t, 4096, roundUp(1, 4096))
	assert.Equal(t, 4096, roundUp(4096, 4096))
	assert.Equal(t, 8192, roundUp(4097, 4096))
}
