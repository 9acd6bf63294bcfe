package config

import (
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// ByteSize is a toml extension that accepts either a number of bytes or a
// human readable size such as "4GB" or "512 MiB".
type ByteSize uint64

func (b *ByteSize) UnmarshalTOML(v interface{}) error {
	switch value := v.(type) {
	case int64:
		if value < 0 {
			return errors.Errorf("size can't be negative: %d", value)
		}
		*b = ByteSize(value)
		return nil
	case string:
		size, err := humanize.ParseBytes(value)
		if err != nil {
			return errors.Wrapf(err, "failed to parse size %q", value)
		}
		*b = ByteSize(size)
		return nil
	default:
		return errors.Errorf("failed to decode size field of type %T", v)
	}
}

func (b ByteSize) String() string {
	if b == 0 {
		return "unlimited"
	}
	return humanize.Bytes(uint64(b))
}
