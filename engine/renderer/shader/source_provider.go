package shader

import (
	"embed"
	"fmt"
	"path"
	"strings"
)

//go:embed assets/*.wgsl
var assets embed.FS

// SourceProvider resolves shader source by name. Names without an extension get ".wgsl" appended.
type SourceProvider interface {
	// Source returns the source text registered under name.
	//
	// Parameters:
	//   - name: the source name, e.g. "forward_vertex" or "lighting.wgsl"
	//
	// Returns:
	//   - string: the source text
	//   - error: an error if no source is registered under name
	Source(name string) (string, error)
}

// embeddedSourceProvider serves the WGSL files shipped in assets/.
type embeddedSourceProvider struct{}

var _ SourceProvider = embeddedSourceProvider{}

// NewEmbeddedSourceProvider returns the SourceProvider over the engine's built-in WGSL sources.
//
// Returns:
//   - SourceProvider: the built-in source provider
func NewEmbeddedSourceProvider() SourceProvider {
	return embeddedSourceProvider{}
}

func (embeddedSourceProvider) Source(name string) (string, error) {
	data, err := assets.ReadFile(path.Join("assets", withExtension(name)))
	if err != nil {
		return "", fmt.Errorf("shader source %q: %w", name, err)
	}
	return string(data), nil
}

// MapSourceProvider serves sources from memory. It is useful for overriding individual built-in sources and in tests.
type MapSourceProvider map[string]string

var _ SourceProvider = MapSourceProvider{}

func (m MapSourceProvider) Source(name string) (string, error) {
	if src, ok := m[withExtension(name)]; ok {
		return src, nil
	}
	if src, ok := m[name]; ok {
		return src, nil
	}
	return "", fmt.Errorf("shader source %q not found", name)
}

// overlaySourceProvider resolves names from the first provider that has them.
type overlaySourceProvider []SourceProvider

// Overlay returns a SourceProvider that consults each provider in order.
//
// Parameters:
//   - providers: providers in priority order
//
// Returns:
//   - SourceProvider: the combined provider
func Overlay(providers ...SourceProvider) SourceProvider {
	return overlaySourceProvider(providers)
}

func (o overlaySourceProvider) Source(name string) (string, error) {
	var errs []string
	for _, p := range o {
		src, err := p.Source(name)
		if err == nil {
			return src, nil
		}
		errs = append(errs, err.Error())
	}
	return "", fmt.Errorf("shader source %q not found: %s", name, strings.Join(errs, "; "))
}

func withExtension(name string) string {
	if path.Ext(name) == "" {
		return name + ".wgsl"
	}
	return name
}
