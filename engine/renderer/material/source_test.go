package material

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlSource = `shader = "diffuse_lit"

[[property]]
name = "surface_color"
kind = "color"

[[property]]
name = "surface_shininess"
kind = "f32"
`

const yamlSource = `shader: diffuse_lit
properties:
  - name: surface_color
    kind: color
  - name: surface_shininess
    kind: f32
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestSourceFromFile(t *testing.T) {
	dir := t.TempDir()
	want := []PropertySource{
		{Name: "surface_color", Kind: "color"},
		{Name: "surface_shininess", Kind: "f32"},
	}

	tests := []struct {
		file    string
		content string
	}{
		{file: "lit.material", content: tomlSource},
		{file: "lit.toml", content: tomlSource},
		{file: "lit.yaml", content: yamlSource},
		{file: "lit.YML", content: yamlSource},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			src, err := SourceFromFile(writeFile(t, dir, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, "diffuse_lit", src.Shader)
			assert.Equal(t, "lit", src.Name)
			assert.Equal(t, want, src.Properties)
		})
	}
}

func TestSourceFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := SourceFromFile(writeFile(t, dir, "lit.json", "{}"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = SourceFromFile(filepath.Join(dir, "missing.material"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = SourceFromFile(writeFile(t, dir, "broken.material", "shader = "))
	assert.Error(t, err)

	_, err = SourceFromFile(writeFile(t, dir, "extra.material", tomlSource+"\nblend = \"add\"\n"))
	assert.Error(t, err)

	_, err = SourceFromFile(writeFile(t, dir, "noshader.yaml", "properties: []\n"))
	assert.Error(t, err)
}

func TestSourceNamePreserved(t *testing.T) {
	dir := t.TempDir()
	src, err := SourceFromFile(writeFile(t, dir, "a.material", "name = \"walls\"\n"+tomlSource))
	require.NoError(t, err)
	assert.Equal(t, "walls", src.Name)
}

func TestMarshalRoundTrip(t *testing.T) {
	src := MaterialSource{Shader: "diffuse_flat", Properties: []PropertySource{{Name: "surface_color", Kind: "color"}}}
	for _, format := range []SourceFormat{SourceFormatTOML, SourceFormatYAML} {
		t.Run(format.String(), func(t *testing.T) {
			data, err := src.Marshal(format)
			require.NoError(t, err)
			got, err := ParseSource(data, format)
			require.NoError(t, err)
			assert.Equal(t, src, got)
		})
	}
}

func TestSourceWatcher(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "live.material", tomlSource)

	w, err := NewSourceWatcher()
	require.NoError(t, err)
	defer w.Close()

	var mu sync.Mutex
	var got []MaterialSource
	require.NoError(t, w.Watch(p, func(src MaterialSource, err error) {
		if err != nil {
			return
		}
		mu.Lock()
		got = append(got, src)
		mu.Unlock()
	}))
	assert.ErrorIs(t, w.Watch(filepath.Join(dir, "x.txt"), nil), ErrUnknownFormat)

	require.NoError(t, os.WriteFile(p, []byte(`shader = "default"`), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1].Shader == "default"
	}, 5*time.Second, 10*time.Millisecond)

	w.Unwatch(p)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
