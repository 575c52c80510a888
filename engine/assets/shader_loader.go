package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Shader file extensions. GLSL pairs share a base name.
const (
	ExtVertex   = ".vert"
	ExtFragment = ".frag"
	ExtWGSL     = ".wgsl"
)

// LoadShader reads dir/name as source text. Backends append any terminator
// their API needs.
func LoadShader(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load shader %q: %w", path, err)
	}
	return strings.TrimRight(string(b), "\x00"), nil
}

// LoadShaderPair reads base.vert and base.frag from dir.
func LoadShaderPair(dir, base string) (vertex, fragment string, err error) {
	if vertex, err = LoadShader(dir, base+ExtVertex); err != nil {
		return "", "", err
	}
	if fragment, err = LoadShader(dir, base+ExtFragment); err != nil {
		return "", "", err
	}
	return vertex, fragment, nil
}
