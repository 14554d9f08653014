// Package character defines the entity model shared by the arena and
// the pluggable script runtimes: identity metadata, physical state,
// movement intent, and the event/command contract every runtime
// implements.
package character

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// MetaFileName is the metadata file expected inside a character directory.
const MetaFileName = "meta.toml"

// DefaultColor is used when a character declares no color.
var DefaultColor = Color{Red: 100, Green: 100, Blue: 100}

const defaultVersion = "1.0"

// Color is a character display color.
type Color struct {
	Red   uint8 `toml:"red" json:"red"`
	Green uint8 `toml:"green" json:"green"`
	Blue  uint8 `toml:"blue" json:"blue"`
}

// Meta is the stable identity of a character. It is immutable after
// load except for Instance, which is assigned once when the character
// joins a game so that multiple copies of the same script can be told
// apart. Meta is comparable and doubles as a map key.
type Meta struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Color      Color     `json:"color"`
	Version    string    `json:"version"`
	Entrypoint string    `json:"entrypoint"`
	Instance   uint8     `json:"instance"`
}

// DisplayName renders the name shown in logs and to other characters'
// scripts, e.g. "kai_1.0" or "kai_1.0 (2)" for the second instance.
func (m Meta) DisplayName() string {
	if m.Instance <= 1 {
		return fmt.Sprintf("%s_%s", m.Name, m.Version)
	}
	return fmt.Sprintf("%s_%s (%d)", m.Name, m.Version, m.Instance)
}

type metaFile struct {
	Name       string `toml:"name"`
	ID         string `toml:"id"`
	Version    string `toml:"version"`
	Entrypoint string `toml:"entrypoint"`
	Color      *Color `toml:"color"`
}

// ParseMeta reads character metadata from TOML. Version and color are
// optional; name, id, and entrypoint are required.
func ParseMeta(data string) (Meta, error) {
	var raw metaFile
	if err := toml.Unmarshal([]byte(data), &raw); err != nil {
		return Meta{}, fmt.Errorf("parse meta toml: %w", err)
	}
	if strings.TrimSpace(raw.Name) == "" {
		return Meta{}, fmt.Errorf("meta is missing 'name'")
	}
	id, err := uuid.Parse(raw.ID)
	if err != nil {
		return Meta{}, fmt.Errorf("expected valid UUID, got %q: %w", raw.ID, err)
	}
	if strings.TrimSpace(raw.Entrypoint) == "" {
		return Meta{}, fmt.Errorf("meta is missing 'entrypoint'")
	}
	version := raw.Version
	if version == "" {
		version = defaultVersion
	}
	color := DefaultColor
	if raw.Color != nil {
		color = *raw.Color
	}
	return Meta{
		ID:         id,
		Name:       raw.Name,
		Color:      color,
		Version:    version,
		Entrypoint: raw.Entrypoint,
		Instance:   1,
	}, nil
}

// LoadMeta reads meta.toml from a character directory.
func LoadMeta(dir string) (Meta, error) {
	path := filepath.Join(dir, MetaFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseMeta(string(data))
}
