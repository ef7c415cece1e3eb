// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestResolveAttributes(t *testing.T) {
	tests := []struct {
		name      string
		config    string
		preloaded bool
		wantLen   int
	}{
		{name: "named document", config: "app", preloaded: false, wantLen: 2},
		{name: "preloaded without name", config: "", preloaded: true, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := ResolveAttributes(tt.config, tt.preloaded)
			if len(attrs) != tt.wantLen {
				t.Fatalf("Expected %d attributes, got %d", tt.wantLen, len(attrs))
			}
			if tt.config != "" {
				verifyAttribute(t, attrs, ConfigNameKey, tt.config)
			}
			verifyBoolAttribute(t, attrs, ConfigPreloadedKey, tt.preloaded)
		})
	}
}

func TestSectionAttributes(t *testing.T) {
	attrs := SectionAttributes("db", "prod", "/etc/app/db/prod.yaml")

	if len(attrs) != 3 {
		t.Fatalf("Expected 3 attributes, got %d", len(attrs))
	}
	verifyAttribute(t, attrs, SectionNameKey, "db")
	verifyAttribute(t, attrs, SectionStemKey, "prod")
	verifyAttribute(t, attrs, ConfigPathKey, "/etc/app/db/prod.yaml")
}

func TestOverrideAttributes(t *testing.T) {
	attrs := OverrideAttributes(2, 5)
	verifyIntAttribute(t, attrs, OverrideKeysKey, 2)
	verifyIntAttribute(t, attrs, PartialKeysKey, 5)
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes(errors.New("test error"), "file_not_found")

	if len(attrs) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(attrs))
	}

	verifyBoolAttribute(t, attrs, ErrorKey, true)
	verifyAttribute(t, attrs, ErrorTypeKey, "file_not_found")
}

func TestAttributeKeys_Consistency(t *testing.T) {
	keys := []string{
		ConfigNameKey, ConfigPathKey, ConfigPreloadedKey,
		SectionNameKey, SectionStemKey, OverrideKeysKey, PartialKeysKey,
	}
	for _, key := range keys {
		if !strings.HasPrefix(key, "config.") {
			t.Errorf("Attribute key %q should be namespaced under config.", key)
		}
	}
}

func verifyAttribute(t *testing.T, attrs []attribute.KeyValue, key, expectedValue string) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsString() != expectedValue {
				t.Errorf("Expected %s=%s, got %s", key, expectedValue, attr.Value.AsString())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}

func verifyIntAttribute(t *testing.T, attrs []attribute.KeyValue, key string, expectedValue int) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsInt64() != int64(expectedValue) {
				t.Errorf("Expected %s=%d, got %d", key, expectedValue, attr.Value.AsInt64())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}

func verifyBoolAttribute(t *testing.T, attrs []attribute.KeyValue, key string, expectedValue bool) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsBool() != expectedValue {
				t.Errorf("Expected %s=%t, got %t", key, expectedValue, attr.Value.AsBool())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}
