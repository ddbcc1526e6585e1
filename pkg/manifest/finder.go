package manifest

import (
	"context"
	"path/filepath"
)

// candidates lists the manifest file names in fallback priority order
var candidates = [...]string{"library.json", ".library.json", "library.properties"}

// Candidates returns the manifest file names searched in a directory, most
// specific first. The returned slice is a copy.
func Candidates() []string {
	return append([]string(nil), candidates[:]...)
}

// FindSync returns the absolute path of the first candidate present in dir
// as a regular file. With no candidates given, Candidates() is used.
func (r *Reader) FindSync(dir string, names ...string) (string, error) {
	if len(names) == 0 {
		names = candidates[:]
	}

	for _, name := range names {
		file := absPath(filepath.Join(dir, name))
		info, err := r.fs.Stat(file)
		if err != nil || !info.Mode().IsRegular() {
			r.logger.Debug().Str("file", file).Msg("Manifest candidate not present")
			continue
		}
		r.logger.Debug().Str("file", file).Msg("Found manifest candidate")
		return file, nil
	}

	return "", newNotFoundError(dir, names)
}

// Find is FindSync run off the caller's goroutine. It returns ctx.Err() if
// the context ends before the lookup completes.
func (r *Reader) Find(ctx context.Context, dir string, names ...string) (string, error) {
	return await(ctx, func() (string, error) {
		return r.FindSync(dir, names...)
	})
}

// FindSync searches dir on the OS filesystem, see Reader.FindSync
func FindSync(dir string, names ...string) (string, error) {
	return defaultReader.FindSync(dir, names...)
}

// Find searches dir on the OS filesystem, see Reader.Find
func Find(ctx context.Context, dir string, names ...string) (string, error) {
	return defaultReader.Find(ctx, dir, names...)
}

// await runs fn on its own goroutine and waits for either its result or the
// end of ctx. fn has no side effects beyond reads, so abandoning it is safe.
func await[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		value, err := fn()
		done <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-done:
		return res.value, res.err
	}
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
