package widget

import (
	"CommentWall/internal/models"
	"fmt"
	"github.com/spf13/afero"
	"path/filepath"
)

// LoadImage reads a profile photo from fs. Files over models.MaxImageBytes are refused
// before they are read.
func LoadImage(fs afero.Fs, path string) (models.Image, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to open image: %w", err)
	}
	if info.Size() > models.MaxImageBytes {
		return models.Image{}, ErrImageTooLarge
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	return models.Image{Name: filepath.Base(path), Data: data}, nil
}
