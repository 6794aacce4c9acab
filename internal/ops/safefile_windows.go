//go:build windows

package ops

import (
	"os"

	"github.com/hpungsan/deckhand/internal/errors"
)

// createExportTemp creates the temp file an export is staged in.
// Windows has no O_NOFOLLOW; ValidatePath has already rejected symlinks.
func createExportTemp(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
}

// openSourceFile opens a deck source for reading.
func openSourceFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.NewFileNotFound(path)
	}
	return f, err
}
