// Package config holds the compiler profile: the target interpreter's kernel table
// and the knobs that change how strictly the semantic core checks its input.
package config

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// MaxSelectorNum is the largest selector number the interpreter can address.
const MaxSelectorNum = 0xFFFF

// Profile configures one compilation.
type Profile struct {
	// Kernels lists kernel function names; a name's position is its kernel number.
	// Empty names leave a slot unused.
	Kernels []string `toml:"kernels" yaml:"kernels"`

	// MaxSelector caps automatically assigned selector numbers.
	MaxSelector int `toml:"max_selector" yaml:"max_selector"`

	// StrictClassDecls rejects class definitions whose property layout differs
	// from an earlier forward declaration of the same class.
	StrictClassDecls bool `toml:"strict_class_decls" yaml:"strict_class_decls"`
}

// Default returns a profile with no kernel functions and the full selector range.
func Default() *Profile {
	return &Profile{MaxSelector: MaxSelectorNum}
}

// ParseTOML decodes a profile from TOML text. Unset fields keep their defaults.
func ParseTOML(data []byte) (*Profile, error) {
	p := Default()
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(p)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config: unknown key %q", undecoded[0].String())
	}
	return p, p.Validate()
}

// ParseYAML decodes a profile from YAML text. Unset fields keep their defaults.
func ParseYAML(data []byte) (*Profile, error) {
	p := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return p, p.Validate()
}

// Validate checks the profile's invariants.
func (p *Profile) Validate() error {
	if p.MaxSelector < 0 || p.MaxSelector > MaxSelectorNum {
		return fmt.Errorf("config: max_selector %d out of range [0, %d]", p.MaxSelector, MaxSelectorNum)
	}
	seen := make(map[string]int, len(p.Kernels))
	for i, name := range p.Kernels {
		if name == "" {
			continue
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("config: kernel %q listed at both %d and %d", name, prev, i)
		}
		seen[name] = i
	}
	return nil
}

// KernelNumber returns the kernel number of name.
func (p *Profile) KernelNumber(name string) (int, bool) {
	for i, k := range p.Kernels {
		if k == name && k != "" {
			return i, true
		}
	}
	return 0, false
}
