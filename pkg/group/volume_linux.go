//go:build linux

package group

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// SysVolumes inspects volumes through statfs(2) and the sysfs block device tree.
type SysVolumes struct {
	SysfsRoot string
}

func (s *SysVolumes) Inspect(path string) (*Volume, error) {
	var fs unix.Statfs_t
	if err := unix.Statfs(path, &fs); err != nil {
		return nil, errors.Wrapf(err, "statfs %s", path)
	}

	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	return &Volume{
		Free:      uint64(fs.Bavail) * uint64(fs.Bsize),
		Writable:  unix.Access(path, unix.W_OK) == nil,
		Removable: s.removable(uint64(st.Dev)),
	}, nil
}

// removable reads the block device's removable flag. Partitions don't carry
// the attribute, so the parent disk is consulted as well.
func (s *SysVolumes) removable(dev uint64) bool {
	root := s.SysfsRoot
	if root == "" {
		root = DefaultSysfsRoot
	}

	node := filepath.Join(root, "dev", "block", fmt.Sprintf("%d:%d", unix.Major(dev), unix.Minor(dev)))

	candidates := []string{filepath.Join(node, "removable")}
	if resolved, err := filepath.EvalSymlinks(node); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(resolved), "removable"))
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		return strings.TrimSpace(string(data)) == "1"
	}

	log.Debugf("no removable attribute for block device %s", node)
	return false
}
