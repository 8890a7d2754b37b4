package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/pcodec/internal/protocol"
	"gopkg.in/yaml.v3"
)

// EnvCatalog names the default catalog path for binaries.
const EnvCatalog = "PCODEC_CATALOG"

// MaxCommand is the highest PCMD a catalog may declare. Bit 7 marks
// responses on the wire, so it is never part of a command number.
const MaxCommand = 0x7F

var (
	ErrUnsupportedFormat = errors.New("config: unsupported catalog format")
	ErrUndecodedKeys     = errors.New("config: unknown keys in catalog")
	ErrDuplicateName     = errors.New("config: duplicate command name")
)

type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Catalog is a file-defined set of command schemas.
type Catalog struct {
	Commands []CommandConfig `toml:"commands" yaml:"commands"`
}

type CommandConfig struct {
	Name       string        `toml:"name" yaml:"name"`
	Peripheral int           `toml:"peripheral" yaml:"peripheral"`
	Command    int           `toml:"command" yaml:"command"`
	Direction  string        `toml:"direction" yaml:"direction"`
	Fields     []FieldConfig `toml:"fields,omitempty" yaml:"fields,omitempty"`
}

// FieldConfig leaves Min and Max nil to take the full width range.
type FieldConfig struct {
	Name   string `toml:"name" yaml:"name"`
	Width  int    `toml:"width" yaml:"width"`
	Signed bool   `toml:"signed" yaml:"signed"`
	Min    *int64 `toml:"min,omitempty" yaml:"min,omitempty"`
	Max    *int64 `toml:"max,omitempty" yaml:"max,omitempty"`
}

// FormatFromPath picks the catalog format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load reads and validates a catalog file.
func Load(path string) (Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Catalog{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cat, err := Parse(data, format)
	if err != nil {
		return Catalog{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := Validate(cat); err != nil {
		return Catalog{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cat, nil
}

// Parse decodes a catalog without validating it. Unknown keys are rejected.
func Parse(data []byte, format Format) (Catalog, error) {
	var cat Catalog
	switch format {
	case FormatTOML:
		meta, err := toml.Decode(string(data), &cat)
		if err != nil {
			return Catalog{}, err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Catalog{}, fmt.Errorf("%w: %s", ErrUndecodedKeys, strings.Join(keys, ", "))
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cat); err != nil {
			if errors.Is(err, io.EOF) {
				return Catalog{}, nil
			}
			return Catalog{}, err
		}
	default:
		return Catalog{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return cat, nil
}

// Validate checks that every command builds and that no two share a key.
func Validate(cat Catalog) error {
	_, err := cat.Build()
	return err
}

// Build creates a registry holding only this catalog's schemas.
func (c Catalog) Build() (*protocol.Registry, error) {
	reg := protocol.NewRegistry()
	if err := c.Into(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Into registers the catalog's schemas into an existing registry. A name may
// appear once per direction so lookups by name stay unambiguous.
func (c Catalog) Into(reg *protocol.Registry) error {
	for i, cmd := range c.Commands {
		s, err := cmd.Schema()
		if err != nil {
			return fmt.Errorf("commands[%d] %q: %w", i, cmd.Name, err)
		}
		if prev, ok := reg.Find(s.Name(), s.Direction()); ok && prev.Key() != s.Key() {
			return fmt.Errorf("commands[%d] %q: %w: %s already names %s", i, cmd.Name, ErrDuplicateName, s.Direction(), prev.Key())
		}
		if err := reg.Register(s); err != nil {
			return fmt.Errorf("commands[%d] %q: %w", i, cmd.Name, err)
		}
	}
	return nil
}

// Schema converts one command entry into a protocol schema.
func (c CommandConfig) Schema() (*protocol.CommandSchema, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if c.Peripheral < 0 || c.Peripheral > 0xFF {
		return nil, fmt.Errorf("peripheral %d outside 0-255", c.Peripheral)
	}
	if c.Command < 0 || c.Command > MaxCommand {
		return nil, fmt.Errorf("command %d outside 0-%d", c.Command, MaxCommand)
	}
	dir, err := protocol.ParseDirection(strings.ToLower(strings.TrimSpace(c.Direction)))
	if err != nil {
		return nil, err
	}
	fields := make([]protocol.FieldSpec, 0, len(c.Fields))
	for i, fc := range c.Fields {
		f, err := fc.Spec()
		if err != nil {
			return nil, fmt.Errorf("fields[%d]: %w", i, err)
		}
		fields = append(fields, f)
	}
	key := protocol.Key{Peripheral: uint8(c.Peripheral), Command: uint8(c.Command), Direction: dir}
	return protocol.NewCommandSchema(c.Name, key, fields...)
}

// Spec converts one field entry. A missing bound defaults to the width limit.
func (f FieldConfig) Spec() (protocol.FieldSpec, error) {
	full, err := protocol.NewField(f.Name, f.Width, f.Signed)
	if err != nil {
		return protocol.FieldSpec{}, err
	}
	if f.Min == nil && f.Max == nil {
		return full, nil
	}
	lo, hi := full.Min(), full.Max()
	if f.Min != nil {
		lo = *f.Min
	}
	if f.Max != nil {
		hi = *f.Max
	}
	return protocol.NewBoundedField(f.Name, f.Width, f.Signed, lo, hi)
}

// FromRegistry converts registered schemas back into catalog form, ordered by key.
func FromRegistry(reg *protocol.Registry) Catalog {
	var cat Catalog
	for _, s := range reg.Schemas() {
		cmd := CommandConfig{
			Name:       s.Name(),
			Peripheral: int(s.Peripheral()),
			Command:    int(s.Command()),
			Direction:  s.Direction().String(),
		}
		for _, f := range s.Fields() {
			fc := FieldConfig{Name: f.Name(), Width: f.Width(), Signed: f.Signed()}
			full, _ := protocol.NewField(f.Name(), f.Width(), f.Signed())
			if f.Min() != full.Min() || f.Max() != full.Max() {
				lo, hi := f.Min(), f.Max()
				fc.Min, fc.Max = &lo, &hi
			}
			cmd.Fields = append(cmd.Fields, fc)
		}
		cat.Commands = append(cat.Commands, cmd)
	}
	return cat
}
