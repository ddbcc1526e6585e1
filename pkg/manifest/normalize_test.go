package manifest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Manifest
		want Manifest
	}{
		{
			name: "string main becomes an array",
			in:   Manifest{"name": "foo", "main": "foo.js"},
			want: Manifest{"name": "foo", "main": []any{"foo.js"}},
		},
		{
			name: "space runs become underscores",
			in:   Manifest{"name": "foo  bar baz"},
			want: Manifest{"name": "foo_bar_baz"},
		},
		{
			name: "tabs are left alone",
			in:   Manifest{"name": "foo\tbar"},
			want: Manifest{"name": "foo\tbar"},
		},
		{
			name: "array main is left alone",
			in:   Manifest{"main": []any{"a.js", json.Number("1")}},
			want: Manifest{"main": []any{"a.js", json.Number("1")}},
		},
		{
			name: "non-string fields are left alone",
			in:   Manifest{"name": json.Number("7"), "main": map[string]any{}},
			want: Manifest{"name": json.Number("7"), "main": map[string]any{}},
		},
		{
			name: "empty manifest",
			in:   Manifest{},
			want: Manifest{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_InPlace(t *testing.T) {
	m := Manifest{"name": "foo bar", "main": "foo.js"}

	out := Normalize(m)

	assert.Equal(t, Manifest{"name": "foo_bar", "main": []any{"foo.js"}}, m)
	out["extra"] = true
	assert.Equal(t, true, m["extra"], "Normalize must return the same map")
}

func TestNormalize_Idempotent(t *testing.T) {
	once := Normalize(Manifest{"name": " a  b ", "main": "x.js", "version": "1.0.0"})
	want := Manifest{"name": "_a_b_", "main": []any{"x.js"}, "version": "1.0.0"}

	assert.Equal(t, want, once)
	assert.Equal(t, want, Normalize(once))
}

func TestDeepCopy(t *testing.T) {
	src := map[string]any{
		"name":    "foo",
		"main":    []any{"a.js"},
		"tags":    []string{"x"},
		"authors": []any{map[string]any{"name": "A"}},
		"nested":  Manifest{"k": []any{"v"}},
	}

	dst := deepCopyMap(src)
	assert.Equal(t, src, dst)

	dst["main"].([]any)[0] = "b.js"
	dst["tags"].([]string)[0] = "y"
	dst["authors"].([]any)[0].(map[string]any)["name"] = "B"
	dst["nested"].(Manifest)["k"].([]any)[0] = "w"

	assert.Equal(t, "a.js", src["main"].([]any)[0])
	assert.Equal(t, "x", src["tags"].([]string)[0])
	assert.Equal(t, "A", src["authors"].([]any)[0].(map[string]any)["name"])
	assert.Equal(t, "v", src["nested"].(Manifest)["k"].([]any)[0])
	assert.Nil(t, deepCopyMap(nil))
}
