/*
Package config provides type-safe configuration extraction from map[string]any.

# Overview

Config wraps a map[string]any, typically parsed from a YAML or JSON file,
and exposes typed accessors that return a default on missing keys or type
mismatches:

	cfg := config.New(map[string]any{
	    "model":   "mistral",
	    "timeout": "5m",
	    "max_attempts": 3,
	})

	model := cfg.String("model", "llama3")            // "mistral"
	timeout := cfg.Duration("timeout", time.Minute)   // 5m
	attempts := cfg.Int("max_attempts", 1)            // 3

Nested sections are reached with Sub:

	backend := cfg.Sub("backend")

# Decoding into structs

Decode fills a struct through mapstructure. Pre-populate the struct with
defaults; keys present in the config overwrite them:

	settings := Defaults()
	if err := cfg.Decode(&settings); err != nil {
	    return err
	}

# File Loading

	cfg, err := config.FromFile("intentgraph.yaml")
	cfg, err = config.FromYAML(yamlBytes)
	cfg, err = config.FromJSON(jsonBytes)

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
