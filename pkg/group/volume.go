package group

import "github.com/pkg/errors"

// Volume describes the file system a destination lives on.
type Volume struct {
	// Free is the number of bytes available to an unprivileged writer
	Free      uint64
	Writable  bool
	Removable bool
}

// VolumeInspector reports on the volume holding a path.
type VolumeInspector interface {
	Inspect(path string) (*Volume, error)
}

// ErrUnsupported is returned by volume inspection on platforms without a
// way to query removable media.
var ErrUnsupported = errors.New("volume inspection is not supported on this platform")

// DefaultSysfsRoot is where block device attributes are read from.
const DefaultSysfsRoot = "/sys"

// NewVolumeInspector returns the platform inspector.
func NewVolumeInspector() VolumeInspector {
	return &SysVolumes{SysfsRoot: DefaultSysfsRoot}
}
