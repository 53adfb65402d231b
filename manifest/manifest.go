// Package manifest describes a header corpus: which headers are read, the
// dialect each is parsed with, and how they are grouped into output files.
//
// A manifest is YAML:
//
//	package: fmod
//	macros: comment     # or omit
//	variadic: marker    # or reject
//	groups:
//	  - name: core
//	    library: fmod
//	    headers:
//	      - path: api/core/inc/fmod_common.h
//	        dialect: core-common
//
// Default returns the built-in manifest for the FMOD Engine SDK layout.
package manifest

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/fmodgen/decl"
	"github.com/wippyai/fmodgen/emit"
	"github.com/wippyai/fmodgen/errors"
)

//go:embed fmod.yaml
var builtin []byte

// Header is one header file and the dialect it is parsed with.
type Header struct {
	Path    string       `yaml:"path"`
	Dialect decl.Dialect `yaml:"dialect"`
}

// Group is one generated Go file. Library names the native library the
// group's functions live in and may be empty for groups without functions.
type Group struct {
	Name    string   `yaml:"name"`
	Library string   `yaml:"library,omitempty"`
	Headers []Header `yaml:"headers"`
}

type Manifest struct {
	Package  string  `yaml:"package"`
	Macros   string  `yaml:"macros,omitempty"`
	Variadic string  `yaml:"variadic,omitempty"`
	Groups   []Group `yaml:"groups"`
}

// Default returns the built-in FMOD manifest.
func Default() *Manifest {
	m, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("manifest: built-in manifest is invalid: %v", err))
	}
	return m
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindNotFound).
			Path(path).
			Detail("read manifest").
			Cause(err).
			Build()
	}
	return Parse(data)
}

// Parse decodes and validates a manifest. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode manifest")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks group names, dialects and the emitter options. A header
// may belong to one group only.
func (m *Manifest) Validate() error {
	if m.Package == "" {
		return errors.InvalidInput(errors.PhaseConfig, "manifest names no package")
	}
	if len(m.Groups) == 0 {
		return errors.InvalidInput(errors.PhaseConfig, "manifest has no groups")
	}
	if _, err := m.Config(); err != nil {
		return err
	}

	groups := make(map[string]bool, len(m.Groups))
	headers := make(map[string]string)
	for _, g := range m.Groups {
		if g.Name == "" {
			return errors.InvalidInput(errors.PhaseConfig, "group without a name")
		}
		if groups[g.Name] {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path("groups", g.Name).
				Detail("group declared twice").
				Build()
		}
		groups[g.Name] = true
		for _, h := range g.Headers {
			if h.Path == "" {
				return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
					Path("groups", g.Name).
					Detail("header without a path").
					Build()
			}
			if _, err := decl.ParseDialect(string(h.Dialect)); err != nil {
				return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, h.Path)
			}
			if prev, ok := headers[h.Path]; ok {
				return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
					Path("groups", g.Name, h.Path).
					Detail("header already listed in group %s", prev).
					Build()
			}
			headers[h.Path] = g.Name
		}
	}
	return nil
}

// Headers lists every header in manifest order.
func (m *Manifest) Headers() []Header {
	var out []Header
	for _, g := range m.Groups {
		out = append(out, g.Headers...)
	}
	return out
}

// EmitGroups converts the groups to emitter groups keyed by header path.
func (m *Manifest) EmitGroups() []emit.Group {
	out := make([]emit.Group, len(m.Groups))
	for i, g := range m.Groups {
		files := make([]string, len(g.Headers))
		for j, h := range g.Headers {
			files[j] = h.Path
		}
		out[i] = emit.Group{Name: g.Name, Library: g.Library, Files: files}
	}
	return out
}

// Config returns the emitter configuration the manifest selects.
func (m *Manifest) Config() (emit.Config, error) {
	cfg := emit.DefaultConfig()
	if m.Package != "" {
		cfg.Package = m.Package
	}
	switch m.Macros {
	case "", "comment":
		cfg.Macros = emit.MacroComment
	case "omit":
		cfg.Macros = emit.MacroOmit
	default:
		return cfg, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("macros").
			Value(m.Macros).
			Detail("want comment or omit").
			Build()
	}
	switch m.Variadic {
	case "", "marker":
		cfg.Variadic = emit.VariadicMarker
	case "reject":
		cfg.Variadic = emit.VariadicReject
	default:
		return cfg, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("variadic").
			Value(m.Variadic).
			Detail("want marker or reject").
			Build()
	}
	return cfg, nil
}
