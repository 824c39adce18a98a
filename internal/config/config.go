// Package config loads the optional .polygen.toml project file (spec.md
// §6.2), supplying default --backend/--output values and mod.<pass>
// overrides that CLI flags take precedence over.
//
// Modeled on internal/tqw/marshaling.go's use of BurntSushi/toml to
// unmarshal a project file straight into a Go struct; polygen's config is
// far flatter than tunaq's world-file format (no manifest/data split, no
// recursive includes), so this package is a single Unmarshal call plus the
// mod.<pass>=<value> override parsing spec.md §6.2 names.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/polygen-project/polygen/internal/modifier"
)

// File is the on-disk shape of .polygen.toml.
type File struct {
	Backend string `toml:"backend"`
	Output  string `toml:"output"`

	// Mod holds mod.<pass>=<value> and mod.<pass>.<opt>=<value> overrides,
	// expressed in TOML as a nested table: [mod.<pass>] opt = value, or a
	// bare `<pass> = true/false` for the no-option form.
	Mod map[string]toml.Primitive `toml:"mod"`

	md toml.MetaData
}

// Load reads and parses path. A missing file is not an error: it returns a
// zero File, since .polygen.toml is optional (CLI flags alone are enough).
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("config: reading %q: %w", path, err)
	}

	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("config: parsing %q: %w", path, err)
	}
	f.md = md
	return &f, nil
}

// ModifierOptions converts the file's [mod.*] tables into the
// map[string]modifier.PassOptions shape modifier.Modifier.Run accepts,
// keyed by pass name.
func (f *File) ModifierOptions() (map[string]modifier.PassOptions, error) {
	out := map[string]modifier.PassOptions{}
	for pass, prim := range f.Mod {
		var opts map[string]any
		if err := f.md.PrimitiveDecode(prim, &opts); err != nil {
			// Not a sub-table: treat the raw value as the pass's own
			// "enabled" flag, e.g. `[mod]\neliminateand = true`.
			var flat any
			if err2 := f.md.PrimitiveDecode(prim, &flat); err2 != nil {
				return nil, fmt.Errorf("config: mod.%s: %w", pass, err)
			}
			out[pass] = modifier.PassOptions{"enabled": fmt.Sprint(flat)}
			continue
		}
		po := modifier.PassOptions{}
		for k, v := range opts {
			po[k] = fmt.Sprint(v)
		}
		out[pass] = po
	}
	return out, nil
}

// ParseOverride parses a single CLI "mod.<pass>=<value>" or
// "mod.<pass>.<opt>=<value>" flag into (pass, opt, value). opt is "enabled"
// for the two-part form.
func ParseOverride(flag string) (pass, opt, value string, err error) {
	rest, ok := strings.CutPrefix(flag, "mod.")
	if !ok {
		return "", "", "", fmt.Errorf("config: override %q must start with \"mod.\"", flag)
	}
	eq := strings.IndexByte(rest, '=')
	if eq < 0 {
		return "", "", "", fmt.Errorf("config: override %q missing \"=value\"", flag)
	}
	key, value := rest[:eq], rest[eq+1:]

	if dot := strings.IndexByte(key, '.'); dot >= 0 {
		return key[:dot], key[dot+1:], value, nil
	}
	return key, "enabled", value, nil
}

// MergeOverrides layers CLI overrides on top of the file-supplied modifier
// options, CLI winning on conflict.
func MergeOverrides(base map[string]modifier.PassOptions, overrides []string) (map[string]modifier.PassOptions, error) {
	out := map[string]modifier.PassOptions{}
	for k, v := range base {
		cp := modifier.PassOptions{}
		for ok, ov := range v {
			cp[ok] = ov
		}
		out[k] = cp
	}
	for _, o := range overrides {
		pass, opt, value, err := ParseOverride(o)
		if err != nil {
			return nil, err
		}
		if out[pass] == nil {
			out[pass] = modifier.PassOptions{}
		}
		out[pass][opt] = value
	}
	return out, nil
}
