//go:build !windows

package ops

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/hpungsan/deckhand/internal/errors"
)

const noFollowFlags = syscall.O_NOFOLLOW | syscall.O_CLOEXEC

// createExportTemp creates the temp file an export is staged in. The file is
// created fresh (O_EXCL) and never through a symlink.
func createExportTemp(path string) (*os.File, error) {
	fd, err := syscall.Open(path, syscall.O_WRONLY|syscall.O_CREAT|syscall.O_EXCL|noFollowFlags, 0600)
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) || stderrors.Is(err, syscall.EEXIST) {
			return nil, errors.NewInvalidRequest("cannot write export through a symlink or existing temp file")
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}

// openSourceFile opens a deck source for reading. A symlink as the final
// path component is refused; parent directories are covered by ValidatePath,
// which only admits files directly inside an allowed directory.
func openSourceFile(path string) (*os.File, error) {
	fd, err := syscall.Open(path, syscall.O_RDONLY|noFollowFlags, 0)
	switch {
	case err == nil:
		return os.NewFile(uintptr(fd), path), nil
	case stderrors.Is(err, syscall.ELOOP):
		return nil, errors.NewInvalidRequest("cannot read a deck source through a symlink")
	case stderrors.Is(err, syscall.ENOENT):
		return nil, errors.NewFileNotFound(path)
	default:
		return nil, err
	}
}
