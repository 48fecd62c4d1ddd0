package tetraview

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrNoBackend is wrapped by the CapabilityError returned when no backend can be used.
var ErrNoBackend = errors.New("no usable rendering backend")

// Backend names a graphics API the viewer can render with.
type Backend string

const (
	// BackendNative is the platform's modern graphics API (Metal on macOS and iOS, DirectX on Windows).
	BackendNative Backend = "native"
	// BackendOpenGL is OpenGL (or OpenGL ES), available nearly everywhere.
	BackendOpenGL Backend = "opengl"
)

// AllBackends lists every Backend the viewer knows about, in the order their diagnostics are reported.
var AllBackends = []Backend{BackendNative, BackendOpenGL}

// Known returns whether the Backend is one of AllBackends.
func (b Backend) Known() bool {
	for _, k := range AllBackends {
		if b == k {
			return true
		}
	}
	return false
}

// GraphicsLibrary returns the ebiten graphics library used for the Backend on the given operating system.
func (b Backend) GraphicsLibrary(goos string) ebiten.GraphicsLibrary {
	switch b {
	case BackendOpenGL:
		return ebiten.GraphicsLibraryOpenGL
	case BackendNative:
		switch goos {
		case "windows":
			return ebiten.GraphicsLibraryDirectX
		case "darwin", "ios":
			return ebiten.GraphicsLibraryMetal
		}
	}
	return ebiten.GraphicsLibraryAuto
}

// Prober reports whether a Backend can be used. When it can't, diagnostic explains why in a form fit to show to a user.
type Prober interface {
	Probe(b Backend) (available bool, diagnostic string)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(b Backend) (bool, string)

func (f ProberFunc) Probe(b Backend) (bool, string) { return f(b) }

// PlatformProber decides availability from the operating system the viewer is running on.
type PlatformProber struct {
	GOOS string // Defaults to runtime.GOOS if empty.
}

func (p PlatformProber) Probe(b Backend) (bool, string) {

	goos := p.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	switch b {

	case BackendNative:
		switch goos {
		case "windows", "darwin", "ios":
			return true, ""
		}
		return false, fmt.Sprintf("Your platform (%s) has no native graphics backend (Metal or DirectX).", goos)

	case BackendOpenGL:
		if goos == "ios" {
			return false, "OpenGL is not supported on iOS."
		}
		return true, ""

	}

	return false, fmt.Sprintf("Unknown backend %q.", string(b))

}

// CapabilityError is returned when none of the preferred backends can be used. It carries the diagnostic message of every
// known backend so all of them can be shown to the user.
type CapabilityError struct {
	Tried       []Backend
	Diagnostics []string
}

func (e *CapabilityError) Error() string {
	tried := make([]string, len(e.Tried))
	for i, b := range e.Tried {
		tried[i] = string(b)
	}
	return fmt.Sprintf("%s (tried %s)", ErrNoBackend, strings.Join(tried, ", "))
}

func (e *CapabilityError) Unwrap() error { return ErrNoBackend }

// SelectBackend returns the first Backend in preference order that the Prober reports as available. If there isn't one,
// it returns a *CapabilityError holding the diagnostics of all known backends.
func SelectBackend(preference []Backend, prober Prober) (Backend, error) {

	for _, b := range preference {
		if ok, _ := prober.Probe(b); ok {
			return b, nil
		}
	}

	capErr := &CapabilityError{Tried: append([]Backend(nil), preference...)}

	for _, b := range AllBackends {
		ok, diag := prober.Probe(b)
		if ok {
			diag = fmt.Sprintf("%s is available but was not in the backend preference list.", b)
		}
		capErr.Diagnostics = append(capErr.Diagnostics, diag)
	}

	return "", capErr

}
