package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a config file encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// extensions maps file extensions to formats.
var extensions = map[string]Format{
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".json": FormatJSON,
}

// FormatFor returns the format implied by path's extension.
// A path without an extension has no format and ok is false.
func FormatFor(path string) (f Format, ok bool, err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false, nil
	}
	f, known := extensions[ext]
	if !known {
		return "", false, fmt.Errorf("unsupported config file extension %q (want .yaml, .yml or .json)", ext)
	}
	return f, true, nil
}

// FromFile loads configuration from a file. The format follows the
// extension; a file without one is read as JSON when it starts with '{'
// and as YAML otherwise.
func FromFile(path string) (Config, error) {
	format, ok, err := FormatFor(path)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	if !ok {
		format = FormatYAML
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
			format = FormatJSON
		}
	}
	return Parse(data, format)
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (Config, error) {
	switch format {
	case FormatYAML:
		return FromYAML(data)
	case FormatJSON:
		return FromJSON(data)
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", format)
	}
}

// FromYAML parses YAML data into a Config. An empty document is an empty
// Config.
func FromYAML(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return New(m), nil
}

// FromJSON parses JSON data into a Config.
func FromJSON(data []byte) (Config, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return New(m), nil
}
