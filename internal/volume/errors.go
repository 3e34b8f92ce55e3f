package volume

import "errors"

// Error kinds per the error-handling design: device bring-up, allocation,
// and format failures are distinct sentinels so callers can branch on them
// without string matching.
var (
	ErrUnsupportedFormat = errors.New("volume: unsupported bytes-per-channel")
	ErrOutOfDeviceMemory = errors.New("volume: out of device memory")
	ErrDeviceUnavailable = errors.New("volume: device unavailable")
)
