package tetraview

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onlyBackends(available ...Backend) Prober {
	return ProberFunc(func(b Backend) (bool, string) {
		for _, a := range available {
			if a == b {
				return true, ""
			}
		}
		return false, string(b) + " missing"
	})
}

func TestSelectBackendPrefersFirst(t *testing.T) {
	b, err := SelectBackend([]Backend{BackendNative, BackendOpenGL}, onlyBackends(BackendNative, BackendOpenGL))
	require.NoError(t, err)
	assert.Equal(t, BackendNative, b)
}

func TestSelectBackendFallsBack(t *testing.T) {
	b, err := SelectBackend([]Backend{BackendNative, BackendOpenGL}, onlyBackends(BackendOpenGL))
	require.NoError(t, err)
	assert.Equal(t, BackendOpenGL, b)
}

func TestSelectBackendReportsEveryDiagnostic(t *testing.T) {

	_, err := SelectBackend([]Backend{BackendOpenGL}, onlyBackends())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoBackend))

	var capErr *CapabilityError
	require.ErrorAs(t, err, &capErr)

	// Both backends' messages are reported, even though only one was preferred.
	assert.Equal(t, []string{"native missing", "opengl missing"}, capErr.Diagnostics)
	assert.Equal(t, []Backend{BackendOpenGL}, capErr.Tried)

}

func TestPlatformProber(t *testing.T) {

	linux := PlatformProber{GOOS: "linux"}
	ok, diag := linux.Probe(BackendNative)
	assert.False(t, ok)
	assert.NotEmpty(t, diag)
	ok, _ = linux.Probe(BackendOpenGL)
	assert.True(t, ok)

	windows := PlatformProber{GOOS: "windows"}
	ok, _ = windows.Probe(BackendNative)
	assert.True(t, ok)

	ios := PlatformProber{GOOS: "ios"}
	ok, _ = ios.Probe(BackendOpenGL)
	assert.False(t, ok)

}

func TestBackendGraphicsLibrary(t *testing.T) {
	assert.Equal(t, ebiten.GraphicsLibraryDirectX, BackendNative.GraphicsLibrary("windows"))
	assert.Equal(t, ebiten.GraphicsLibraryMetal, BackendNative.GraphicsLibrary("darwin"))
	assert.Equal(t, ebiten.GraphicsLibraryOpenGL, BackendOpenGL.GraphicsLibrary("linux"))
	assert.Equal(t, ebiten.GraphicsLibraryAuto, Backend("vulkan").GraphicsLibrary("linux"))
}
