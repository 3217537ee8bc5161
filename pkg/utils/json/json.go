// Package json routes the persistent config stores' JSON encoding through
// sonic. HTTP request and response bodies are encoded by gin, not here.
package json

import (
	"github.com/bytedance/sonic"
)

// Marshal serializes v using sonic's default configuration.
func Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// Unmarshal deserializes data into v using sonic's default configuration.
func Unmarshal(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

// MarshalIndent serializes v with indentation, for human-facing output.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return sonic.MarshalIndent(v, prefix, indent)
}

// MarshalString serializes v and returns the result as a string.
func MarshalString(v any) (string, error) {
	return sonic.MarshalString(v)
}
