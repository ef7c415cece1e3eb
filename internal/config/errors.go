// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "errors"

// Use errors.Is against these; they are always wrapped with context.
var (
	// ErrFileNotFound is returned when the root document or a default section file does not exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrParse classifies malformed YAML and malformed "defaults" declarations.
	ErrParse = errors.New("config parse error")

	// ErrAttributeNotFound is returned by Node.Attr for a missing key.
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrKeyNotFound is returned by Node.Delete for a missing key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidArgument is returned when a merge argument or override payload is not a mapping.
	ErrInvalidArgument = errors.New("invalid argument")
)
