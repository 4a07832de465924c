package shader

import (
	"embed"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"
)

// Built-in shader keys.
const (
	KeyDefault           = "default"
	KeyDiffuseFlat       = "diffuse_flat"
	KeyDiffuseLit        = "diffuse_lit"
	KeyTextureDiffuseLit = "texture_diffuse_lit"
)

//go:embed assets/builtin/*.wgsl
var builtinFS embed.FS

// library is the implementation of the Library interface.
type library struct {
	mu      *sync.RWMutex
	shaders map[string]Shader
}

// Library is a keyed collection of shaders. Materials name their shader by key, so every
// material build resolves against a Library.
type Library interface {
	// Register adds a shader under its key.
	//
	// Parameters:
	//   - s: the shader to add
	//
	// Returns:
	//   - error: an error if a shader with the same key is already registered
	Register(s Shader) error

	// Shader looks up a shader by key.
	//
	// Parameters:
	//   - key: the shader key
	//
	// Returns:
	//   - Shader: the shader
	//   - bool: false if no shader is registered under the key
	Shader(key string) (Shader, bool)

	// Default returns the shader used by default materials.
	//
	// Returns:
	//   - Shader: the "default" shader
	Default() Shader

	// Keys returns every registered key in sorted order.
	//
	// Returns:
	//   - []string: the shader keys
	Keys() []string
}

var _ Library = &library{}

// NewLibrary creates a Library holding the built-in shaders: default (unlit surface_color),
// diffuse_flat (Lambert), diffuse_lit (Blinn-Phong) and texture_diffuse_lit (Blinn-Phong with a
// surface_diffuse texture).
//
// Returns:
//   - Library: the library with the built-ins registered
func NewLibrary() Library {
	l := &library{
		mu:      &sync.RWMutex{},
		shaders: make(map[string]Shader),
	}
	entries, err := builtinFS.ReadDir("assets/builtin")
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read built-in shaders: %v", err))
	}
	for _, e := range entries {
		data, err := builtinFS.ReadFile(path.Join("assets/builtin", e.Name()))
		if err != nil {
			panic(fmt.Sprintf("shader: failed to read built-in shader %s: %v", e.Name(), err))
		}
		s, err := NewShader(strings.TrimSuffix(e.Name(), ".wgsl"), string(data))
		if err != nil {
			panic(fmt.Sprintf("shader: invalid built-in shader %s: %v", e.Name(), err))
		}
		l.shaders[s.Key()] = s
	}
	return l
}

func (l *library) Register(s Shader) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.shaders[s.Key()]; exists {
		return fmt.Errorf("shader: %q is already registered", s.Key())
	}
	l.shaders[s.Key()] = s
	return nil
}

func (l *library) Shader(key string) (Shader, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.shaders[key]
	return s, ok
}

func (l *library) Default() Shader {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.shaders[KeyDefault]
}

func (l *library) Keys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.shaders))
	for k := range l.shaders {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
