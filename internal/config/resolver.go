// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ManuGH/cfgtree/internal/log"
	"github.com/ManuGH/cfgtree/internal/metrics"
	"github.com/ManuGH/cfgtree/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Options configures a Resolver. They are fixed once NewResolver returns.
type Options struct {
	// InitialPath is the directory holding <ConfigName>.yaml. Default: working directory.
	InitialPath string

	// ConfigPath is the base directory of default sections. Default: working directory.
	ConfigPath string

	// ConfigName is the root document's file name without extension.
	// Required unless Preloaded is set.
	ConfigName string

	// Overrides replace root keys wholesale (no recursion).
	// Must be a *Node or a string-keyed map.
	Overrides any

	// PartialOverrides are merged recursively into the root.
	// Must be a *Node or a string-keyed map.
	PartialOverrides any

	// Preloaded, when set, is used as the root instead of reading any file.
	// The tree is taken as already composed: default sections are not loaded,
	// and the "defaults" key is dropped unless RetainDefaults is set.
	Preloaded any

	// RetainDefaults keeps the "defaults" key in the resolved root.
	RetainDefaults bool

	// ReadFile reads a document. Default: os.ReadFile.
	ReadFile func(path string) ([]byte, error)

	// Logger overrides the logger. Default: the logger carried by the
	// Resolve context, annotated with component=config.
	Logger *zerolog.Logger
}

// Resolver loads a root document, substitutes its default sections and
// applies overrides. The result is computed at most once per Resolver.
//
// Resolve is safe for concurrent use: concurrent first calls perform a single
// resolution. The returned Node is shared by all callers and is not itself
// synchronised.
type Resolver struct {
	opts     Options
	id       string
	readFile func(string) ([]byte, error)

	mu       sync.Mutex
	resolved *Node
}

// NewResolver creates a Resolver. No I/O happens until Resolve.
func NewResolver(opts Options) *Resolver {
	if opts.InitialPath == "" {
		opts.InitialPath = workingDir()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = workingDir()
	}
	readFile := opts.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	return &Resolver{
		opts:     opts,
		id:       uuid.NewString(),
		readFile: readFile,
	}
}

// Load resolves a configuration in one call.
func Load(ctx context.Context, opts Options) (*Node, error) {
	return NewResolver(opts).Resolve(ctx)
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// ID identifies the Resolver in logs.
func (r *Resolver) ID() string { return r.id }

// RootPath is the path of the root document.
func (r *Resolver) RootPath() string {
	return filepath.Join(r.opts.InitialPath, r.opts.ConfigName+DocumentExt)
}

// Resolved reports whether a resolution has completed successfully.
func (r *Resolver) Resolved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved != nil
}

// Resolve returns the resolved root, computing it on the first call.
// A failed resolution is not cached; the next call tries again.
func (r *Resolver) Resolve(ctx context.Context) (*Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved != nil {
		return r.resolved, nil
	}

	root, err := r.resolve(ctx)
	if err != nil {
		return nil, err
	}
	r.resolved = root
	return root, nil
}

// ToPlain resolves if needed and returns the plain form of the result.
func (r *Resolver) ToPlain(ctx context.Context) (map[string]any, error) {
	root, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return root.ToPlain(), nil
}

func (r *Resolver) logger(ctx context.Context) zerolog.Logger {
	base := r.opts.Logger
	if base == nil {
		l := log.WithComponentFromContext(ctx, "config")
		base = &l
	}
	return base.With().
		Str(log.FieldResolutionID, r.id).
		Str(log.FieldConfigName, r.opts.ConfigName).
		Logger()
}

func (r *Resolver) resolve(ctx context.Context) (*Node, error) {
	start := time.Now()
	logger := r.logger(ctx)

	ctx, span := telemetry.Tracer(telemetry.InstrumentationName).Start(ctx, "cfgtree.resolve",
		trace.WithAttributes(telemetry.ResolveAttributes(r.opts.ConfigName, r.opts.Preloaded != nil)...))
	defer span.End()

	root, sections, err := r.build(ctx, logger, span)
	metrics.ObserveResolve(time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(telemetry.ErrorAttributes(err, errorType(err))...)
		logger.Error().Err(err).Msg("configuration resolution failed")
		return nil, err
	}

	logger.Info().
		Int64(log.FieldDurationMS, time.Since(start).Milliseconds()).
		Strs(log.FieldSections, sections).
		Bool(log.FieldPreloaded, r.opts.Preloaded != nil).
		Msg("configuration resolved")
	return root, nil
}

func (r *Resolver) build(ctx context.Context, logger zerolog.Logger, span trace.Span) (*Node, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Payloads are checked before any file is read.
	overrides, err := payload("overrides", r.opts.Overrides)
	if err != nil {
		return nil, nil, err
	}
	partial, err := payload("partial overrides", r.opts.PartialOverrides)
	if err != nil {
		return nil, nil, err
	}

	var (
		root     *Node
		sections []string
	)
	if r.opts.Preloaded != nil {
		var ok bool
		if root, ok = ownedNode(r.opts.Preloaded); !ok {
			return nil, nil, fmt.Errorf("%w: preloaded configuration must be a mapping or *Node, got %T", ErrInvalidArgument, r.opts.Preloaded)
		}
		// No section files are read, but the declaration is still consumed.
		if root.Has(DefaultsKey) && !r.opts.RetainDefaults {
			if err := root.Delete(DefaultsKey); err != nil {
				return nil, nil, err
			}
		}
	} else {
		if r.opts.ConfigName == "" {
			return nil, nil, fmt.Errorf("%w: config name is required", ErrInvalidArgument)
		}
		path := r.RootPath()
		v, err := r.read(ctx, metrics.FileKindRoot, path, attribute.String(telemetry.ConfigPathKey, path))
		if err != nil {
			return nil, nil, err
		}
		if root, err = rootNode(v, path); err != nil {
			return nil, nil, err
		}
		if sections, err = r.applyDefaults(ctx, root, logger); err != nil {
			return nil, nil, err
		}
	}

	span.SetAttributes(telemetry.OverrideAttributes(overrides.Len(), partial.Len())...)
	if overrides.Len() > 0 {
		if err := root.Update(overrides); err != nil {
			return nil, nil, err
		}
		logger.Debug().Strs(log.FieldOverrides, overrides.Keys()).Msg("full overrides applied")
	}
	if partial.Len() > 0 {
		if err := root.Merge(partial); err != nil {
			return nil, nil, err
		}
		logger.Debug().Strs(log.FieldPartial, partial.Keys()).Msg("partial overrides applied")
	}

	return root, sections, nil
}

// payload converts an optional override payload; absent yields an empty Node.
func payload(what string, v any) (*Node, error) {
	if v == nil {
		return NewNode(), nil
	}
	n, ok := asNode(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a mapping or *Node, got %T", ErrInvalidArgument, what, v)
	}
	return n, nil
}

// read loads one document and records the attempt.
func (r *Resolver) read(ctx context.Context, kind, path string, attrs ...attribute.KeyValue) (any, error) {
	_, span := telemetry.Tracer(telemetry.InstrumentationName).Start(ctx, "cfgtree.read_document",
		trace.WithAttributes(attrs...))
	defer span.End()

	v, err := readDocument(r.readFile, path)
	metrics.IncFileRead(kind, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return v, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "io"
	}
}
