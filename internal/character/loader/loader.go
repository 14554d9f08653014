// Package loader opens a character directory and picks the runtime
// backend that matches its entrypoint.
package loader

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/luarena/luarena/internal/character"
	"github.com/luarena/luarena/internal/character/luaruntime"
	"github.com/luarena/luarena/internal/character/wasmruntime"
)

// Load reads meta.toml from dir and instantiates the matching runtime.
// Lua scripts use the embedded interpreter, .wasm modules the
// WebAssembly host; any other extension is rejected.
func Load(ctx context.Context, dir string) (character.Meta, character.Runtime, error) {
	meta, err := character.LoadMeta(dir)
	if err != nil {
		return character.Meta{}, nil, fmt.Errorf("load %s: %w", dir, err)
	}

	var runtime character.Runtime
	switch ext := filepath.Ext(meta.Entrypoint); ext {
	case ".lua":
		runtime, err = luaruntime.Load(dir, meta)
	case ".wasm":
		runtime, err = wasmruntime.Load(ctx, dir, meta)
	default:
		return character.Meta{}, nil, fmt.Errorf("load %s: unsupported entrypoint %q", dir, meta.Entrypoint)
	}
	if err != nil {
		return character.Meta{}, nil, fmt.Errorf("load %s: %w", dir, err)
	}
	return meta, runtime, nil
}
