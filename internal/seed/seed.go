// Package seed loads starter catalogs from YAML.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matthieukhl/axoshard/internal/catalog"
	"github.com/matthieukhl/axoshard/internal/models"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type File struct {
	Products []models.ProductInput `yaml:"products"`
}

// Parse reads a catalog file. Unknown keys are rejected so typos surface.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &f, nil
}

func ParseFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

// Default is the storefront's starter merchandise.
func Default() *File {
	f, err := Parse(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(err)
	}
	return f
}

// Apply creates every product in f through the catalog service, so the
// same defaults and validation apply as for admin forms. A catalog that
// already has products is left alone unless force is set.
func Apply(ctx context.Context, svc *catalog.Service, f *File, force bool) (int, error) {
	if !force {
		existing, err := svc.List(ctx, catalog.Filter{})
		if err != nil {
			return 0, err
		}
		if len(existing) > 0 {
			return 0, nil
		}
	}

	created := 0
	for i, in := range f.Products {
		if _, err := svc.Create(ctx, in); err != nil {
			return created, fmt.Errorf("product %d (%q): %w", i+1, in.Name, err)
		}
		created++
	}
	return created, nil
}
