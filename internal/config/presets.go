package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is a named bundle of request defaults. Legacy clients name a
// preset instead of passing a raw store id; the server merges the preset
// under the caller's own values, so a request can still override any
// field.
//
// Preset file shape:
//
//	tasks:
//	  storeId: household
//	  tabId: Tasks
//	  schemaTabId: Schema
//	rsvps:
//	  storeId: wedding
//	  tabId: RSVPs
type Preset struct {
	StoreID     string `yaml:"storeId"`
	TabID       string `yaml:"tabId"`
	SchemaTabID string `yaml:"schemaTabId"`
}

// LoadPresets reads the preset file at path. A blank path disables
// presets and returns an empty map; a missing file is an error so a
// typo'd PRESETS_PATH fails at startup rather than silently serving
// without presets.
func LoadPresets(path string) (map[string]Preset, error) {
	if path == "" {
		return map[string]Preset{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}

	presets := map[string]Preset{}
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("parse presets %q: %w", path, err)
	}
	return presets, nil
}
