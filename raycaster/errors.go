package raycaster

import "errors"

// Error kinds per the orchestrator's error-handling design: each is a
// distinct sentinel so callers can branch without string matching.
var (
	ErrDeviceUnavailable = errors.New("raycaster: device unavailable")
	ErrOutOfDeviceMemory = errors.New("raycaster: out of device memory")
	ErrUnsupportedFormat = errors.New("raycaster: unsupported volume format")
	ErrTransientDevice   = errors.New("raycaster: transient device error")
	ErrRenderNotViable   = errors.New("raycaster: renderer not viable, reconfigure before rendering")
)
