package core

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Codec serializes device descriptions for transport between a device feed
// and its environments. Implement it for custom wire formats.
type Codec interface {
	Encode(d Device) ([]byte, error)
	Decode(data []byte) (Device, error)
}

// JSONCodec encodes devices as JSON objects.
type JSONCodec struct{}

func (JSONCodec) Encode(d Device) ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return b, nil
}

func (JSONCodec) Decode(data []byte) (Device, error) {
	var d Device
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return HyphenateKeys(d), nil
}

// YAMLCodec encodes devices as YAML mappings.
type YAMLCodec struct{}

func (YAMLCodec) Encode(d Device) ([]byte, error) {
	b, err := yaml.Marshal(map[string]any(d))
	if err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return b, nil
}

func (YAMLCodec) Decode(data []byte) (Device, error) {
	var d map[string]any
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return HyphenateKeys(d), nil
}
