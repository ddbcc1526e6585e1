package manifest

import (
	"context"
	"errors"
	"io/fs"

	"github.com/rs/zerolog"
)

// Reader resolves, reads and processes manifests through a FileSystem. A
// Reader holds no mutable state and is safe for concurrent use.
type Reader struct {
	fs     FileSystem
	logger zerolog.Logger
}

// ReaderOptions contains options for creating a reader
type ReaderOptions struct {
	// FileSystem defaults to the operating system
	FileSystem FileSystem
	// Logger receives debug events; nil disables logging
	Logger *zerolog.Logger
}

// defaultReader backs the package-level functions
var defaultReader = NewReader(ReaderOptions{})

// NewReader creates a new manifest reader
func NewReader(opts ReaderOptions) *Reader {
	fsys := opts.FileSystem
	if fsys == nil {
		fsys = OSFileSystem()
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "manifest").Logger()
	}

	return &Reader{fs: fsys, logger: logger}
}

// ReadSync reads the manifest at path. A directory is searched for the
// candidate files in priority order. It returns the processed manifest and
// the absolute path of the file that was read.
func (r *Reader) ReadSync(path string, opts ...Option) (Manifest, string, error) {
	info, err := r.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", newMissingFileError(absPath(path), err)
		}
		return nil, "", err
	}

	if info.IsDir() {
		file, err := r.FindSync(path)
		if err != nil {
			return nil, "", err
		}
		return r.ReadSync(file, opts...)
	}

	file := absPath(path)
	data, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	r.logger.Debug().Str("file", file).Int("bytes", len(data)).Msg("Parsing manifest")

	raw, err := ParseRaw(file, data)
	if err != nil {
		return nil, "", err
	}

	m, err := r.parse(raw, resolveOptions(opts))
	if err != nil {
		var merr *Error
		if errors.As(err, &merr) {
			merr.File = file
		}
		r.logger.Debug().Str("file", file).Err(err).Msg("Manifest rejected")
		return nil, "", err
	}

	return m, file, nil
}

// Read is ReadSync run off the caller's goroutine. It returns ctx.Err() if
// the context ends first.
func (r *Reader) Read(ctx context.Context, path string, opts ...Option) (Manifest, string, error) {
	type result struct {
		m    Manifest
		file string
	}

	res, err := await(ctx, func() (result, error) {
		m, file, err := r.ReadSync(path, opts...)
		return result{m: m, file: file}, err
	})
	return res.m, res.file, err
}

// Parse applies the configured steps to m, see the package-level Parse
func (r *Reader) Parse(m Manifest, opts ...Option) (Manifest, error) {
	return r.parse(m, resolveOptions(opts))
}

func (r *Reader) parse(m Manifest, o Options) (Manifest, error) {
	if o.Clone {
		m = Manifest(deepCopyMap(m))
	}

	if o.Validate {
		issues := GetIssues(m)
		r.logger.Debug().
			Int("errors", len(issues.Errors)).
			Int("warnings", len(issues.Warnings)).
			Msg("Validated manifest")
		if len(issues.Errors) > 0 {
			return nil, newInvalidError(issues.Errors[0])
		}
	}

	if o.Normalize {
		Normalize(m)
	}

	return m, nil
}

// Parse clones, validates and normalizes m according to opts, in that order.
// Unless cloning is enabled the returned manifest is m itself, modified in
// place.
func Parse(m Manifest, opts ...Option) (Manifest, error) {
	return defaultReader.Parse(m, opts...)
}

// ReadSync reads a manifest from the OS filesystem, see Reader.ReadSync
func ReadSync(path string, opts ...Option) (Manifest, string, error) {
	return defaultReader.ReadSync(path, opts...)
}

// Read reads a manifest from the OS filesystem, see Reader.Read
func Read(ctx context.Context, path string, opts ...Option) (Manifest, string, error) {
	return defaultReader.Read(ctx, path, opts...)
}
