package manifest

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quantmind-br/libmanifest/internal/mocks"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestParse_Defaults(t *testing.T) {
	m := Manifest{"name": "foo bar", "main": "foo.js"}

	out, err := Parse(m)

	require.NoError(t, err)
	assert.Equal(t, Manifest{"name": "foo_bar", "main": []any{"foo.js"}}, out)

	// Without cloning the input is modified in place
	out["touched"] = true
	assert.Equal(t, true, m["touched"])
}

func TestParse_Clone(t *testing.T) {
	m := Manifest{"name": "foo bar", "main": "foo.js", "authors": []any{map[string]any{"name": "A"}}}

	out, err := Parse(m, WithClone(true))

	require.NoError(t, err)
	assert.Equal(t, Manifest{"name": "foo bar", "main": "foo.js", "authors": []any{map[string]any{"name": "A"}}}, m)
	assert.Equal(t, "foo_bar", out["name"])

	out["authors"].([]any)[0].(map[string]any)["name"] = "B"
	assert.Equal(t, "A", m["authors"].([]any)[0].(map[string]any)["name"])
}

func TestParse_CloneWithoutOtherSteps(t *testing.T) {
	m := Manifest{"name": "foo bar", "main": "foo.js"}

	out, err := Parse(m, WithOptions(Options{Clone: true}))

	require.NoError(t, err)
	assert.Equal(t, m, out)
	out["name"] = "changed"
	assert.Equal(t, "foo bar", m["name"])
}

func TestParse_ValidationFailure(t *testing.T) {
	m := Manifest{"main": "foo.js"}

	out, err := Parse(m)

	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, CodeInvalid, CodeOf(err))
	assert.Equal(t, MsgNameMissing, err.Error())
	// Normalization never ran
	assert.Equal(t, "foo.js", m["main"])
}

func TestParse_ValidationDisabled(t *testing.T) {
	out, err := Parse(Manifest{"main": "foo.js"}, WithValidate(false))

	require.NoError(t, err)
	assert.Equal(t, Manifest{"main": []any{"foo.js"}}, out)
}

func TestParse_NormalizeDisabled(t *testing.T) {
	out, err := Parse(Manifest{"name": "foo bar", "main": "foo.js"}, WithNormalize(false))

	require.NoError(t, err)
	assert.Equal(t, Manifest{"name": "foo bar", "main": "foo.js"}, out)
}

func TestReadSync_Directory(t *testing.T) {
	dir := fixture(t, "pkg-library-json")

	m, file, err := ReadSync(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "library.json"), file)
	assert.Equal(t, "SomeLibrary", m.Name())
	assert.Equal(t, "0.0.0", m.Version())
	assert.Equal(t, []any{"src/some-library.js"}, m["main"])
}

func TestReadSync_File(t *testing.T) {
	dir := fixture(t, "pkg-library-json")

	m, file, err := ReadSync(filepath.Join(dir, "library.json"), WithNormalize(false))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "library.json"), file)
	assert.Equal(t, "src/some-library.js", m["main"])
}

func TestReadSync_RelativePathResolvesAbsolute(t *testing.T) {
	_, file, err := ReadSync(filepath.Join("testdata", "pkg-library-json"))

	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(file))
	assert.Equal(t, filepath.Join(fixture(t, "pkg-library-json"), "library.json"), file)
}

func TestReadSync_Properties(t *testing.T) {
	dir := fixture(t, "pkg-library-properties")

	m, file, err := ReadSync(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "library.properties"), file)
	assert.Equal(t, Manifest{
		"name":     "SomeLibrary",
		"version":  "0.0.0",
		"sentence": "Arduino library",
	}, m)
}

func TestReadSync_DotLibraryJSON(t *testing.T) {
	dir := fixture(t, "pkg-dot-library-json")

	m, file, err := ReadSync(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".library.json"), file)
	assert.NotEmpty(t, m.Name())
}

func TestReadSync_Failures(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		code     Code
		sentinel error
		file     string
	}{
		{
			name:     "missing path",
			path:     filepath.Join("testdata", "does-not-exist"),
			code:     CodeNotFound,
			sentinel: ErrNotFound,
			file:     "does-not-exist",
		},
		{
			name:     "directory without candidates",
			path:     filepath.Join("testdata", "empty"),
			code:     CodeNotFound,
			sentinel: ErrNotFound,
		},
		{
			name:     "malformed JSON",
			path:     filepath.Join("testdata", "pkg-library-json-malformed"),
			code:     CodeMalformed,
			sentinel: ErrMalformed,
			file:     filepath.Join("pkg-library-json-malformed", "library.json"),
		},
		{
			name:     "invalid name",
			path:     filepath.Join("testdata", "pkg-invalid-name"),
			code:     CodeInvalid,
			sentinel: ErrInvalid,
			file:     filepath.Join("pkg-invalid-name", "library.json"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, file, err := ReadSync(tt.path)

			require.Error(t, err)
			assert.Nil(t, m)
			assert.Empty(t, file)
			assert.Equal(t, tt.code, CodeOf(err))
			assert.ErrorIs(t, err, tt.sentinel)
			if tt.file != "" {
				assert.True(t, filepath.IsAbs(FileOf(err)))
				assert.True(t, strings.HasSuffix(FileOf(err), string(filepath.Separator)+tt.file), FileOf(err))
			}
		})
	}
}

func TestReadSync_InvalidMessage(t *testing.T) {
	_, _, err := ReadSync(fixture(t, "pkg-invalid-name"))

	require.Error(t, err)
	assert.Equal(t, MsgNameInvalid, err.Error())
}

func TestReadSync_ValidationDisabled(t *testing.T) {
	m, _, err := ReadSync(fixture(t, "pkg-invalid-name"), WithValidate(false))

	require.NoError(t, err)
	assert.Equal(t, "Some_Library!", m.Name())
}

func TestReadSync_ValidationDisabledMissingName(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/lib/library.json", []byte(`{"version":"1.0.0"}`), 0o644))
	r := NewReader(ReaderOptions{FileSystem: NewFileSystem(fsys)})

	m, file, err := r.ReadSync("/lib", WithValidate(false))
	require.NoError(t, err)
	assert.Equal(t, "/lib/library.json", file)
	assert.Equal(t, Manifest{"version": "1.0.0"}, m)

	_, _, err = r.ReadSync("/lib")
	require.Error(t, err)
	assert.Equal(t, CodeInvalid, CodeOf(err))
	assert.Equal(t, "/lib/library.json", FileOf(err))
}

func TestReadSync_DirectoryNamedLikeCandidate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/lib/library.json", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/lib/.library.json", []byte(`{"name":"dot"}`), 0o644))
	r := NewReader(ReaderOptions{FileSystem: NewFileSystem(fsys)})

	m, file, err := r.ReadSync("/lib")

	require.NoError(t, err)
	assert.Equal(t, "/lib/.library.json", file)
	assert.Equal(t, "dot", m.Name())
}

func TestReadSync_RawIOErrorsPassThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	permErr := &fs.PathError{Op: "stat", Path: "/secret", Err: fs.ErrPermission}
	mockFS := mocks.NewMockFileSystem(ctrl)
	mockFS.EXPECT().Stat("/secret").Return(nil, permErr)

	r := NewReader(ReaderOptions{FileSystem: mockFS})
	_, _, err := r.ReadSync("/secret")

	require.Error(t, err)
	assert.Same(t, permErr, err)
	assert.Empty(t, CodeOf(err))
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestReadSync_ReadFileErrorPassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/lib/library.json", []byte(`{}`), 0o644))
	info, err := mem.Stat("/lib/library.json")
	require.NoError(t, err)

	readErr := errors.New("device not ready")
	mockFS := mocks.NewMockFileSystem(ctrl)
	mockFS.EXPECT().Stat("/lib/library.json").Return(info, nil)
	mockFS.EXPECT().ReadFile("/lib/library.json").Return(nil, readErr)

	r := NewReader(ReaderOptions{FileSystem: mockFS})
	_, _, err = r.ReadSync("/lib/library.json")

	assert.Same(t, readErr, err)
}

func TestReadSync_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	r := NewReader(ReaderOptions{Logger: &logger})

	_, _, err := r.ReadSync(fixture(t, "pkg-library-json"))

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `"component":"manifest"`)
	assert.Contains(t, out, "Found manifest candidate")
	assert.Contains(t, out, "Parsing manifest")
}

func TestRead(t *testing.T) {
	ctx := context.Background()

	t.Run("matches ReadSync", func(t *testing.T) {
		dir := fixture(t, "pkg-library-json")

		asyncM, asyncFile, asyncErr := Read(ctx, dir)
		syncM, syncFile, syncErr := ReadSync(dir)

		require.NoError(t, asyncErr)
		require.NoError(t, syncErr)
		assert.Equal(t, syncM, asyncM)
		assert.Equal(t, syncFile, asyncFile)
	})

	t.Run("matches ReadSync failures", func(t *testing.T) {
		dir := fixture(t, "pkg-library-json-malformed")

		_, _, asyncErr := Read(ctx, dir)
		_, _, syncErr := ReadSync(dir)

		require.Error(t, asyncErr)
		assert.Equal(t, syncErr.Error(), asyncErr.Error())
		assert.Equal(t, CodeOf(syncErr), CodeOf(asyncErr))
		assert.Equal(t, FileOf(syncErr), FileOf(asyncErr))
	})

	t.Run("passes options", func(t *testing.T) {
		m, _, err := Read(ctx, fixture(t, "pkg-invalid-name"), WithValidate(false), WithNormalize(false))

		require.NoError(t, err)
		assert.Equal(t, "Some Library!", m.Name())
	})
}
