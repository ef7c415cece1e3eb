// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService      = "service"
	FieldComponent    = "component"
	FieldResolutionID = "resolution_id"

	// Document fields
	FieldConfigName = "config_name"
	FieldSection    = "section"
	FieldFileStem   = "file_stem"
	FieldPath       = "path"

	// Resolution fields
	FieldDurationMS = "duration_ms"
	FieldSections   = "sections"
	FieldOverrides  = "overrides"
	FieldPartial    = "partial_overrides"
	FieldPreloaded  = "preloaded"
)
