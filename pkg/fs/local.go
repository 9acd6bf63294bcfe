package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/fuzable/podkey/pkg/model"
	"github.com/fuzable/podkey/pkg/naming"
)

type Local struct {
	fs afero.Fs
}

var _ Storage = (*Local)(nil)

func NewLocal(fs afero.Fs) (*Local, error) {
	if fs == nil {
		return nil, errors.New("file system can't be nil")
	}

	return &Local{fs: fs}, nil
}

// NewOS returns storage backed by the operating system's file system.
func NewOS() *Local {
	return &Local{fs: afero.NewOsFs()}
}

// Create streams reader into "<path>.part" and renames it into place once complete.
func (l *Local) Create(ctx context.Context, path string, reader io.Reader) (int64, error) {
	var (
		logger  = log.WithField("path", path)
		dir     = filepath.Dir(path)
		partial = path + model.PartialSuffix
	)

	if _, err := l.EnsureFolder(dir); err != nil {
		return 0, err
	}

	logger.Debugf("writing to: %s", partial)
	written, err := l.copyFile(ctx, reader, partial)
	if err != nil {
		if rmErr := l.fs.Remove(partial); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.WithError(rmErr).Warn("failed to remove partial file")
		}
		return 0, errors.Wrap(err, "failed to copy file")
	}

	if err := l.fs.Rename(partial, path); err != nil {
		_ = l.fs.Remove(partial)
		return 0, errors.Wrapf(err, "failed to move %s into place", partial)
	}

	logger.Debugf("wrote %d bytes", written)
	return written, nil
}

// Copy copies src to dst. A failed copy removes whatever was written to dst.
func (l *Local) Copy(ctx context.Context, src, dst string) (int64, error) {
	in, err := l.fs.Open(src)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open source %s", src)
	}
	defer in.Close()

	written, err := l.copyFile(ctx, in, dst)
	if err != nil {
		_ = l.fs.Remove(dst)
		return 0, errors.Wrapf(err, "failed to copy %s to %s", src, dst)
	}

	return written, nil
}

func (l *Local) Rename(oldPath, newPath string) error {
	if oldPath == newPath {
		return nil
	}

	if err := l.fs.Rename(oldPath, newPath); err != nil {
		return errors.Wrapf(err, "failed to rename %s to %s", oldPath, newPath)
	}

	return nil
}

func (l *Local) Delete(ctx context.Context, path string) error {
	return l.fs.Remove(path)
}

func (l *Local) Exists(path string) (bool, error) {
	stat, err := l.fs.Stat(path)
	if err == nil {
		return !stat.IsDir(), nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, errors.Wrapf(err, "failed to stat %s", path)
}

func (l *Local) DirExists(path string) (bool, error) {
	ok, err := afero.DirExists(l.fs, path)
	if err != nil {
		return false, errors.Wrapf(err, "failed to stat %s", path)
	}
	return ok, nil
}

// ListFiles returns regular files sorted by name.
func (l *Local) ListFiles(dir string) ([]os.FileInfo, error) {
	infos, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return nil, err
	}

	files := make([]os.FileInfo, 0, len(infos))
	for _, info := range infos {
		if info.Mode().IsRegular() {
			files = append(files, info)
		}
	}

	return files, nil
}

// ListFolders returns full paths of the immediate subdirectories of dir, sorted by name.
func (l *Local) ListFolders(dir string) ([]string, error) {
	infos, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return nil, err
	}

	var folders []string
	for _, info := range infos {
		if info.IsDir() {
			folders = append(folders, filepath.Join(dir, info.Name()))
		}
	}

	sort.Strings(folders)
	return folders, nil
}

// TreeSize sums file sizes recursively. Unfinished downloads are not counted
// and a missing dir has size 0.
func (l *Local) TreeSize(dir string) (int64, error) {
	var total int64

	if _, err := l.fs.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	err := afero.Walk(l.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() && !naming.IsPartial(info.Name()) {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to compute size of %s", dir)
	}

	return total, nil
}

func (l *Local) EnsureFolder(path string) (bool, error) {
	stat, err := l.fs.Stat(path)
	if err == nil {
		if !stat.IsDir() {
			return false, errors.Errorf("%s exists and is not a directory", path)
		}
		return false, nil
	}

	if !os.IsNotExist(err) {
		return false, errors.Wrapf(err, "failed to stat %s", path)
	}

	log.Debugf("creating directory: %s", path)
	if err := l.fs.MkdirAll(path, 0755); err != nil {
		return false, errors.Wrapf(err, "failed to create directory %s", path)
	}

	return true, nil
}

func (l *Local) copyFile(ctx context.Context, source io.Reader, destinationPath string) (int64, error) {
	dest, err := l.fs.Create(destinationPath)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create destination file")
	}

	written, err := io.Copy(dest, &ctxReader{ctx: ctx, r: source})
	if err != nil {
		dest.Close()
		return 0, errors.Wrap(err, "failed to copy data")
	}

	if err := dest.Close(); err != nil {
		return 0, errors.Wrap(err, "failed to close destination file")
	}

	return written, nil
}

// ctxReader stops a long copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
