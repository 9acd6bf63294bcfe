package fs

import (
	"context"
	"io"
	"os"
)

// Storage is the file system surface used by the synchronize and copy phases.
type Storage interface {
	// Create writes a new file from reader. Nothing is left behind at path on failure.
	Create(ctx context.Context, path string, reader io.Reader) (int64, error)
	// Copy copies a file byte for byte.
	Copy(ctx context.Context, src, dst string) (int64, error)
	// Rename moves a file within the same volume.
	Rename(oldPath, newPath string) error
	// Delete deletes the file
	Delete(ctx context.Context, path string) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// DirExists reports whether a directory exists at path.
	DirExists(path string) (bool, error)
	// ListFiles returns the regular files of dir.
	ListFiles(dir string) ([]os.FileInfo, error)
	// ListFolders returns the immediate subdirectories of dir.
	ListFolders(dir string) ([]string, error)
	// TreeSize returns the summed size of all files under dir.
	TreeSize(dir string) (int64, error)

	FolderEnsurer
}

// FolderEnsurer creates folders on demand.
type FolderEnsurer interface {
	// EnsureFolder creates path if missing and reports whether it had to.
	EnsureFolder(path string) (bool, error)
}
