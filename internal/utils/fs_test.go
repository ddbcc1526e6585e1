package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "home directory with slash",
			input:    "~/test",
			expected: filepath.Join(home, "test"),
		},
		{
			name:     "home directory only",
			input:    "~",
			expected: home,
		},
		{
			name:     "regular path",
			input:    "/tmp/test",
			expected: "/tmp/test",
		},
		{
			name:     "relative path",
			input:    "./test",
			expected: "./test",
		},
		{
			name:     "tilde inside a name",
			input:    "lib~/x",
			expected: "lib~/x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandPath(tt.input))
		})
	}
}

func TestRelPath(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "src")

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"nested", filepath.Join(root, "libs", "a"), "libs/a"},
		{"root itself", root, "."},
		{"outside root", filepath.Join(string(filepath.Separator), "other", "b"), filepath.Join(string(filepath.Separator), "other", "b")},
		{"sibling with common prefix", filepath.Join(string(filepath.Separator), "srcx"), filepath.Join(string(filepath.Separator), "srcx")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RelPath(root, tt.path))
		})
	}
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "library.json")
	assert.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))

	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(file))
	assert.False(t, IsDir(filepath.Join(dir, "missing")))
}
