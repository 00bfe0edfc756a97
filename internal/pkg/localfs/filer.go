package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/google/uuid"
)

// Filer stores uploaded audio on the local disk.
// Stored names are fresh uuids, so concurrent uploads never collide
type Filer struct {
	root string
	dir  string
}

// NewFiler creates the saver and makes sure the uploads dir exists.
// Returned paths are relative to root so they survive relocation of the deployment dir
func NewFiler(root, dir string) (*Filer, error) {
	if dir == "" {
		dir = "uploads"
	}
	if root == "" {
		var err error
		root, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("can't get working dir: %w", err)
		}
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("can't create uploads dir: %w", err)
	}
	return &Filer{root: root, dir: dir}, nil
}

// SaveFile writes the stream under a new uuid based name keeping the extension.
// Returns the stored path relative to the project root, with forward slashes
func (f *Filer) SaveFile(ctx context.Context, ext string, r io.Reader) (string, error) {
	name := uuid.NewString() + ext
	full := filepath.Join(f.dir, name)
	goapp.Log.Info().Str("name", name).Msg("Save")
	file, err := os.OpenFile(full, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("can't create file: %w", err)
	}
	defer file.Close()
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("can't save '%s': %w", name, err)
	}
	rel, err := filepath.Rel(f.root, full)
	if err != nil {
		return "", fmt.Errorf("can't make relative path: %w", err)
	}
	return filepath.ToSlash(rel), nil
}
