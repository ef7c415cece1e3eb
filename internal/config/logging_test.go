// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/ManuGH/cfgtree/internal/log"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverLogsAsConfigComponent(t *testing.T) {
	var buf bytes.Buffer
	attached := zerolog.New(&buf).Level(zerolog.InfoLevel)
	ctx := attached.WithContext(context.Background())

	r := NewResolver(Options{ConfigName: "app", Preloaded: map[string]any{"a": 1}})
	_, err := r.Resolve(ctx)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "config", entry[log.FieldComponent])
	assert.Equal(t, r.ID(), entry[log.FieldResolutionID])
	assert.Equal(t, true, entry[log.FieldPreloaded])
}
