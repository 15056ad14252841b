package engine

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArch(t *testing.T) {
	for in, want := range map[string]Arch{
		"amd64":   ArchX86_64,
		"x86_64":  ArchX86_64,
		"X86-64":  ArchX86_64,
		"arm64":   ArchARM64,
		"aarch64": ArchARM64,
		"rv64":    ArchRiscv64,
	} {
		got, err := ParseArch(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseArch("mips")
	assert.Error(t, err)
}

func TestParseOS(t *testing.T) {
	got, err := ParseOS("macos")
	require.NoError(t, err)
	assert.Equal(t, OSDarwin, got)

	_, err = ParseOS("plan9")
	assert.Error(t, err)
}

func TestSupportsNative(t *testing.T) {
	assert.True(t, Platform{ArchX86_64, OSLinux}.SupportsNative())
	assert.True(t, Platform{ArchX86_64, OSDarwin}.SupportsNative())
	assert.False(t, Platform{ArchX86_64, OSWindows}.SupportsNative())
	assert.False(t, Platform{ArchARM64, OSLinux}.SupportsNative())
	assert.Equal(t, "x86_64-linux", Platform{ArchX86_64, OSLinux}.String())
}

func TestHost(t *testing.T) {
	h := Host()
	if runtime.GOARCH == "amd64" {
		assert.Equal(t, ArchX86_64, h.Arch)
	}
	if runtime.GOOS == "linux" {
		assert.Equal(t, OSLinux, h.OS)
	}
}
