// Package render locates character portraits on disk and generates
// placeholder art for characters that have none.
package render

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/pable/tkstats/internal/roster"
)

// Extensions are tried in order within each render directory.
var Extensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// DefaultFile is the file name used for the generic portrait.
const DefaultFile = "default.png"

// Source says where a served image came from.
type Source string

const (
	SourceFile        Source = "file"
	SourcePlaceholder Source = "placeholder"
	SourceDefault     Source = "default"
)

// Image is an encoded portrait ready to serve.
type Image struct {
	Data        []byte
	ContentType string
	Source      Source
	Path        string // set when Source is SourceFile
}

// Resolver finds portraits for catalog characters.
type Resolver struct {
	dirs    []string
	catalog *roster.Catalog
	logger  zerolog.Logger
}

// NewResolver returns a resolver searching dirs in priority order.
func NewResolver(cat *roster.Catalog, dirs []string, logger zerolog.Logger) *Resolver {
	return &Resolver{dirs: append([]string(nil), dirs...), catalog: cat, logger: logger}
}

// Find returns the path of the first portrait file for name, checking every
// extension in each directory before moving to the next one.
func (r *Resolver) Find(name string) (string, bool) {
	slug := roster.Slug(name)
	if !safeSlug(slug) {
		return "", false
	}
	for _, dir := range r.dirs {
		for _, ext := range Extensions {
			p := filepath.Join(dir, slug+ext)
			if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
				return p, true
			}
		}
	}
	return "", false
}

// Resolve returns the portrait for name. Files on disk win; catalog
// characters without a file get a generated placeholder; anything else, or
// any failure along the way, yields the default portrait.
func (r *Resolver) Resolve(name string) (*Image, error) {
	if p, ok := r.Find(name); ok {
		data, err := os.ReadFile(p)
		if err == nil {
			return &Image{Data: data, ContentType: mimetype.Detect(data).String(), Source: SourceFile, Path: p}, nil
		}
		r.logger.Warn().Err(err).Str("path", p).Msg("read render")
	}

	if canonical, ok := r.catalog.Lookup(name); ok {
		data, err := Placeholder(canonical)
		if err == nil {
			return &Image{Data: data, ContentType: "image/png", Source: SourcePlaceholder}, nil
		}
		r.logger.Warn().Err(err).Str("character", canonical).Msg("generate placeholder")
	}

	data, err := DefaultImage()
	if err != nil {
		return nil, fmt.Errorf("generate default image: %w", err)
	}
	return &Image{Data: data, ContentType: "image/png", Source: SourceDefault}, nil
}

// WritePlaceholders writes a placeholder PNG for every catalog character
// into dir, plus the default portrait. Existing files are left alone. It
// returns the number of files written.
func WritePlaceholders(dir string, cat *roster.Catalog, logger zerolog.Logger) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create render dir: %w", err)
	}

	written := 0
	write := func(path string, gen func() ([]byte, error)) error {
		if _, err := os.Stat(path); err == nil {
			logger.Debug().Str("path", path).Msg("render exists, skipping")
			return nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		data, err := gen()
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		written++
		logger.Info().Str("path", path).Msg("placeholder written")
		return nil
	}

	for _, name := range cat.Characters() {
		name := name
		path := filepath.Join(dir, roster.Slug(name)+".png")
		if err := write(path, func() ([]byte, error) { return Placeholder(name) }); err != nil {
			return written, fmt.Errorf("placeholder for %s: %w", name, err)
		}
	}
	if err := write(filepath.Join(dir, DefaultFile), DefaultImage); err != nil {
		return written, fmt.Errorf("default image: %w", err)
	}
	return written, nil
}

// safeSlug rejects names that would escape the render directories.
func safeSlug(slug string) bool {
	return slug != "" && !strings.ContainsAny(slug, `/\`) && !strings.Contains(slug, "..")
}
