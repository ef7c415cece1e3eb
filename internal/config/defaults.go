// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ManuGH/cfgtree/internal/log"
	"github.com/ManuGH/cfgtree/internal/metrics"
	"github.com/ManuGH/cfgtree/internal/telemetry"
	"github.com/rs/zerolog"
)

// DefaultsKey is the reserved root key that declares default sections.
const DefaultsKey = "defaults"

type defaultEntry struct {
	section string
	stem    string
}

// parseDefaults snapshots the declaration before root is mutated.
// Accepted shape: a sequence of mappings {section: stem}. A mapping with
// several keys contributes its entries in order; a null declaration is empty.
func parseDefaults(v any) ([]defaultEntry, error) {
	if v == nil {
		return nil, nil
	}
	seq, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a sequence of mappings, got %T", ErrParse, DefaultsKey, v)
	}

	entries := make([]defaultEntry, 0, len(seq))
	for i, item := range seq {
		m, ok := item.(*Node)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be a mapping, got %T", ErrParse, DefaultsKey, i, item)
		}
		for _, it := range m.Items() {
			if it.Key == "" {
				return nil, fmt.Errorf("%w: %s[%d]: empty section name", ErrParse, DefaultsKey, i)
			}
			stem, err := fileStem(it.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[%d].%s: %w", ErrParse, DefaultsKey, i, it.Key, err)
			}
			entries = append(entries, defaultEntry{section: it.Key, stem: stem})
		}
	}
	return entries, nil
}

func fileStem(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case *Node, []any:
		return "", fmt.Errorf("file stem must be a scalar, got %T", v)
	default:
		return fmt.Sprint(t), nil
	}
}

// sectionPath is <ConfigPath>/<section>/<stem>.yaml.
func (r *Resolver) sectionPath(e defaultEntry) string {
	return filepath.Join(r.opts.ConfigPath, e.section, e.stem+DocumentExt)
}

// applyDefaults installs every declared default section into root and
// returns the names of the sections that were loaded, in order.
func (r *Resolver) applyDefaults(ctx context.Context, root *Node, logger zerolog.Logger) ([]string, error) {
	raw, ok := root.Lookup(DefaultsKey)
	if !ok {
		return nil, nil
	}
	entries, err := parseDefaults(raw)
	if err != nil {
		return nil, err
	}

	loaded := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.stem == "" {
			metrics.IncDefaultSection(metrics.SectionSkipped)
			logger.Debug().Str(log.FieldSection, e.section).Msg("default section has no file stem, keeping existing value")
			continue
		}

		path := r.sectionPath(e)
		v, err := r.read(ctx, metrics.FileKindDefault, path, telemetry.SectionAttributes(e.section, e.stem, path)...)
		if err != nil {
			return nil, fmt.Errorf("default section %q: %w", e.section, err)
		}
		// Later entries for the same section overwrite earlier ones.
		root.put(e.section, v)
		metrics.IncDefaultSection(metrics.SectionLoaded)
		logger.Debug().
			Str(log.FieldSection, e.section).
			Str(log.FieldFileStem, e.stem).
			Str(log.FieldPath, path).
			Msg("default section loaded")
		loaded = append(loaded, e.section)
	}

	if !r.opts.RetainDefaults {
		if err := root.Delete(DefaultsKey); err != nil {
			return nil, err
		}
	}
	return loaded, nil
}
