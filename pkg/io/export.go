package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/barscene/pkg/scene"
)

// WriteJSON encodes ds as indented JSON. The output can be read back with
// [ReadJSON].
func WriteJSON(w io.Writer, ds scene.Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteTOML encodes ds as TOML. The output can be read back with
// [ReadTOML].
func WriteTOML(w io.Writer, ds scene.Dataset) error {
	if err := toml.NewEncoder(w).Encode(ds); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
