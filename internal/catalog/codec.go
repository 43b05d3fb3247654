package catalog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	domerrors "github.com/garyellow/course-eligibility-go/internal/errors"
)

// Compression is the container format of a catalog file.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// CompressionFor picks the compression from a file name extension.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// Parse decodes and validates a YAML (or JSON) catalog.
func Parse(data []byte) (*Catalog, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a catalog, transparently decompressing gzip or zstd input,
// and validates it.
func Decode(r io.Reader) (*Catalog, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(zstdMagic))

	var src io.Reader = br
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("decompress: create gzip reader: %w", err)
		}
		defer gz.Close()
		src = gz
	case bytes.HasPrefix(head, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("decompress: create decoder: %w", err)
		}
		defer dec.Close()
		src = dec
	}

	var c Catalog
	if err := yaml.NewDecoder(src).Decode(&c); err != nil {
		if err == io.EOF {
			return nil, domerrors.ErrCatalogEmpty
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads the catalog file at path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domerrors.NewCatalogError(path, err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, domerrors.NewCatalogError(path, err)
	}
	return c, nil
}

// Encode writes c as YAML with the given compression.
func Encode(w io.Writer, c *Catalog, compression Compression) error {
	var (
		dst    io.Writer = w
		closer io.Closer
	)
	switch compression {
	case CompressionGzip:
		gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return fmt.Errorf("compress: create gzip writer: %w", err)
		}
		dst, closer = gz, gz
	case CompressionZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return fmt.Errorf("compress: create encoder: %w", err)
		}
		dst, closer = enc, enc
	}

	ye := yaml.NewEncoder(dst)
	ye.SetIndent(2)
	if err := ye.Encode(c); err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := ye.Close(); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if closer != nil {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("compress: close: %w", err)
		}
	}
	return nil
}

// Save writes c to path, compressing by extension. The file is written to a
// temporary sibling first and renamed into place.
func Save(path string, c *Catalog) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := Encode(tmp, c, CompressionFor(path)); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename catalog: %w", err)
	}
	return nil
}
