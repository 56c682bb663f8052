// Package file reads collections from line files (one entry per line) on an afero filesystem.
// A collection named "users" is read from "<root_dir>/users<ext>". Files ending in .zst or .lz4
// are decompressed transparently.
package file

import (
	"context"

	"github.com/autom8ter/flatdb/errors"
	"github.com/autom8ter/flatdb/storage"
	"github.com/autom8ter/flatdb/storage/registry"
	"github.com/autom8ter/flatdb/util"
	"github.com/spf13/afero"
)

// DefaultExt is the default collection file extension
const DefaultExt = ".db"

func init() {
	registry.Register("file", func(params map[string]any) (storage.Reader, error) {
		var cfg Config
		if err := util.Decode(params, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.Validation, "invalid file params")
		}
		if err := util.ValidateStruct(&cfg); err != nil {
			return nil, err
		}
		return New(afero.NewBasePathFs(afero.NewOsFs(), cfg.RootDir), cfg.Ext), nil
	})
}

// Config configures a file reader
type Config struct {
	// RootDir is the directory holding the collection files
	RootDir string `json:"root_dir" validate:"required"`
	// Ext is the collection file extension (default: .db)
	Ext string `json:"ext"`
}

// Reader reads collection files from a filesystem
type Reader struct {
	fs  afero.Fs
	ext string
}

// New returns a reader of the collection files on fs
func New(fs afero.Fs, ext string) *Reader {
	if ext == "" {
		ext = DefaultExt
	}
	return &Reader{fs: fs, ext: ext}
}

// Path returns the path of the collection's file
func (r *Reader) Path(collection string) string {
	return collection + r.ext
}

// Read returns the records of the active entries in the collection file
func (r *Reader) Read(ctx context.Context, collection string) ([][]byte, error) {
	if err := storage.ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	path := r.Path(collection)
	f, err := r.fs.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, 0, "read file error: %s", path)
	}
	defer f.Close()
	return storage.DecodeObject(f, path)
}
