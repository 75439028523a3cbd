package analysis

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// WithSnapshot writes a chart into a temp file on fs, hands its path and bytes
// to use, and removes the file afterwards. Removal happens on every path,
// including render and use failures.
func WithSnapshot(fs afero.Fs, render func(io.Writer) error, use func(path string, data []byte) error) (err error) {
	f, err := afero.TempFile(fs, "", "stockchart-*.png")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	path := f.Name()

	defer func() {
		if rmErr := fs.Remove(path); rmErr != nil {
			err = errors.Join(err, fmt.Errorf("remove snapshot: %w", rmErr))
		}
	}()

	if err := render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("render snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	return use(path, data)
}
