// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for configuration resolution spans.
const (
	ConfigNameKey      = "config.name"
	ConfigPathKey      = "config.path"
	ConfigPreloadedKey = "config.preloaded"

	SectionNameKey = "config.section.name"
	SectionStemKey = "config.section.stem"

	OverrideKeysKey = "config.overrides.keys"
	PartialKeysKey  = "config.partial_overrides.keys"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// ResolveAttributes creates the attributes of a resolution span.
func ResolveAttributes(name string, preloaded bool) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if name != "" {
		attrs = append(attrs, attribute.String(ConfigNameKey, name))
	}
	return append(attrs, attribute.Bool(ConfigPreloadedKey, preloaded))
}

// SectionAttributes creates the attributes of a default section load.
func SectionAttributes(section, stem, path string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(SectionNameKey, section),
		attribute.String(SectionStemKey, stem),
		attribute.String(ConfigPathKey, path),
	}
}

// OverrideAttributes records how many top-level keys each override payload carried.
func OverrideAttributes(overrides, partial int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(OverrideKeysKey, overrides),
		attribute.Int(PartialKeysKey, partial),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
