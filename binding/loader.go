package binding

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a binding file from the given path. The
// format follows the extension: .json and .jsonc are JSONC, anything
// else YAML.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read binding file %s: %w", path, err)
	}

	var f *File

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		f, err = ParseJSONC(data)
	default:
		f, err = Parse(data)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse binding YAML: %w", err)
	}

	applyDefaults(&f)

	return &f, nil
}

// ParseJSONC strips comments and trailing commas from data, then parses
// the JSON result into a File.
func ParseJSONC(data []byte) (*File, error) {
	var f File

	if err := json.Unmarshal(jsonc.ToJSON(data), &f); err != nil {
		return nil, fmt.Errorf("failed to parse binding JSON: %w", err)
	}

	applyDefaults(&f)

	return &f, nil
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// applyDefaults fills in default values for optional entries.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = CurrentVersion
	}

	if f.Types == nil {
		f.Types = map[string]TypeBinding{}
	}
}
