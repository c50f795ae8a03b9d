// Package registry knows which models already have a factory definition in
// the output directory.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lumos-Labs-HQ/factorygen/internal/dialect"
	"github.com/Lumos-Labs-HQ/factorygen/internal/types"
	"github.com/spf13/afero"
)

type Registry interface {
	Has(model types.Model) bool
}

// DirRegistry holds the definitions found in a factories directory.
type DirRegistry struct {
	dialect *dialect.Dialect
	defined map[string]string // normalized name -> file
}

// Load scans every dialect source file under dir. A missing directory yields
// an empty registry.
func Load(afs afero.Fs, dir string, d *dialect.Dialect) (*DirRegistry, error) {
	reg := &DirRegistry{
		dialect: d,
		defined: make(map[string]string),
	}

	exists, err := afero.DirExists(afs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to check factories directory: %w", err)
	}
	if !exists {
		return reg, nil
	}

	ext := "." + d.Extension
	err = afero.Walk(afs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ext {
			return nil
		}

		content, err := afero.ReadFile(afs, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		for _, name := range d.Definitions(string(content)) {
			reg.defined[normalize(name)] = path
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reg, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, `\`))
}

func (r *DirRegistry) Has(model types.Model) bool {
	_, ok := r.defined[normalize(r.dialect.ClassName(model))]
	return ok
}

// File returns the file holding the model's definition.
func (r *DirRegistry) File(model types.Model) (string, bool) {
	path, ok := r.defined[normalize(r.dialect.ClassName(model))]
	return path, ok
}

func (r *DirRegistry) Len() int {
	return len(r.defined)
}

// Filter returns the models reg does not know, keeping their order.
func Filter(models []types.Model, reg Registry) []types.Model {
	var out []types.Model
	for _, m := range models {
		if !reg.Has(m) {
			out = append(out, m)
		}
	}
	return out
}
