package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/stemsi/exstem-practice/internal/model"
	"github.com/stemsi/exstem-practice/internal/qbank"
)

// FileBankSource reads a JSON or YAML bank document from disk.
type FileBankSource struct {
	path string
}

// NewFileBankSource creates a new FileBankSource.
func NewFileBankSource(path string) *FileBankSource {
	return &FileBankSource{path: path}
}

func (s *FileBankSource) Path() string { return s.path }

// Load reads and decodes the file; the format follows the file extension.
func (s *FileBankSource) Load(_ context.Context) ([]model.RawQuestion, error) {
	format, err := qbank.FormatFromPath(s.path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrBankNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read bank file: %w", err)
	}

	return qbank.Decode(data, format)
}
