//go:build !linux

package group

// SysVolumes is only implemented on Linux.
type SysVolumes struct {
	SysfsRoot string
}

func (s *SysVolumes) Inspect(path string) (*Volume, error) {
	return nil, ErrUnsupported
}
