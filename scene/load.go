package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a scene file encoding.
type Format int

const (
	TOML Format = iota
	YAML
)

var ErrUnknownFormat = errors.New("unknown scene file format")

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Load reads and validates the scene file at path.
func Load(path string) (Scene, error) {
	f, err := FormatOf(path)
	if err != nil {
		return Scene{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("read scene: %w", err)
	}
	s, err := Parse(data, f)
	if err != nil {
		return Scene{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scene. Fields missing from data keep the value of the
// preset named by the "preset" key, or of Default.
func Parse(data []byte, f Format) (Scene, error) {
	var head struct {
		Preset string `toml:"preset" yaml:"preset"`
	}
	if err := unmarshal(data, f, &head); err != nil {
		return Scene{}, err
	}

	s := Default
	if head.Preset != "" {
		var err error
		if s, err = Preset(head.Preset); err != nil {
			return Scene{}, err
		}
	}
	if err := unmarshal(data, f, &s); err != nil {
		return Scene{}, err
	}
	if err := s.Validate(); err != nil {
		return Scene{}, err
	}
	return s, nil
}

// Marshal encodes s in format f.
func Marshal(s Scene, f Format) ([]byte, error) {
	switch f {
	case TOML:
		return toml.Marshal(s)
	case YAML:
		return yaml.Marshal(s)
	}
	return nil, ErrUnknownFormat
}

func unmarshal(data []byte, f Format, v any) error {
	var err error
	switch f {
	case TOML:
		err = toml.Unmarshal(data, v)
	case YAML:
		err = yaml.Unmarshal(data, v)
	default:
		return ErrUnknownFormat
	}
	if err != nil {
		return fmt.Errorf("decode scene: %w", err)
	}
	return nil
}
