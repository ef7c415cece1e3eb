// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// cfgtree resolves a hierarchical YAML configuration and prints it as JSON.
//
// Usage:
//
//	cfgtree -name app [-initial-path dir] [-config-path dir]
//	cfgtree -name app -set db.host=localhost -set db.port=5432
//	cfgtree -name app -partial local.yaml -get db.host
//
// Exit codes:
//   - 0: Configuration resolved
//   - 1: Resolution error (missing file, parse error, unknown -get path)
//   - 2: Usage error
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ManuGH/cfgtree/internal/config"
	"github.com/ManuGH/cfgtree/internal/log"
	"github.com/ManuGH/cfgtree/internal/telemetry"
	"github.com/ManuGH/cfgtree/internal/version"
)

// assignments collects repeated -set flags.
type assignments []string

func (a *assignments) String() string { return strings.Join(*a, ",") }

func (a *assignments) Set(v string) error {
	*a = append(*a, v)
	return nil
}

type options struct {
	name           string
	initialPath    string
	configPath     string
	overridesFile  string
	partialFile    string
	sets           assignments
	retainDefaults bool
	get            string
	logLevel       string
	otlpExporter   string
	otlpEndpoint   string
	otlpInsecure   bool
	showVersion    bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cfgtree", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.name, "name", "", "root document name without extension (required)")
	fs.StringVar(&o.initialPath, "initial-path", "", "directory holding the root document (default: working directory)")
	fs.StringVar(&o.configPath, "config-path", "", "base directory of default sections (default: working directory)")
	fs.StringVar(&o.overridesFile, "overrides", "", "YAML file whose top-level keys replace root keys")
	fs.StringVar(&o.partialFile, "partial", "", "YAML file merged recursively into the root")
	fs.Var(&o.sets, "set", "partial override path=value, value parsed as YAML (repeatable)")
	fs.BoolVar(&o.retainDefaults, "retain-defaults", false, "keep the defaults key in the output")
	fs.StringVar(&o.get, "get", "", "dotted path of a single value to print")
	fs.StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&o.otlpExporter, "otlp-exporter", "", "OTLP trace exporter: grpc or http (default: tracing off)")
	fs.StringVar(&o.otlpEndpoint, "otlp-endpoint", "", "OTLP collector endpoint, e.g. localhost:4317")
	fs.BoolVar(&o.otlpInsecure, "otlp-insecure", true, "disable TLS towards the OTLP collector")
	fs.BoolVar(&o.showVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if o.showVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	if o.name == "" {
		fmt.Fprintln(stderr, "Error: -name is required")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  cfgtree -name app [-initial-path dir] [-config-path dir]")
		return 2
	}

	log.Reconfigure(log.Config{Level: o.logLevel, Output: stderr})
	logger := log.WithComponent("cli")

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        o.otlpExporter != "",
		ServiceVersion: version.Version,
		Exporter:       o.otlpExporter,
		Endpoint:       o.otlpEndpoint,
		Insecure:       o.otlpInsecure,
		SamplingRate:   1.0,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	opts, err := buildOptions(o)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, config.ErrInvalidArgument) {
			return 2
		}
		return 1
	}

	base := log.Base()
	r := config.NewResolver(opts)
	root, err := r.Resolve(base.WithContext(ctx))
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error in %s:\n", r.RootPath())
		fmt.Fprintf(stderr, "  %v\n", err)
		return 1
	}

	var out any = root.ToPlain()
	if o.get != "" {
		v, ok := root.At(splitPath(o.get)...)
		if !ok {
			fmt.Fprintf(stderr, "Error: %s: %v\n", o.get, config.ErrKeyNotFound)
			return 1
		}
		out = config.Unwrap(v)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "Error: encode output: %v\n", err)
		return 1
	}
	return 0
}

func buildOptions(o options) (config.Options, error) {
	opts := config.Options{
		InitialPath:    o.initialPath,
		ConfigPath:     o.configPath,
		ConfigName:     o.name,
		RetainDefaults: o.retainDefaults,
	}

	if o.overridesFile != "" {
		n, err := config.LoadDocument(o.overridesFile)
		if err != nil {
			return opts, fmt.Errorf("overrides: %w", err)
		}
		opts.Overrides = n
	}

	partial := config.NewNode()
	if o.partialFile != "" {
		n, err := config.LoadDocument(o.partialFile)
		if err != nil {
			return opts, fmt.Errorf("partial overrides: %w", err)
		}
		partial = n
	}
	for _, s := range o.sets {
		nested, err := parseAssignment(s)
		if err != nil {
			return opts, err
		}
		if err := partial.Merge(nested); err != nil {
			return opts, err
		}
	}
	if partial.Len() > 0 {
		opts.PartialOverrides = partial
	}
	return opts, nil
}

// parseAssignment turns "a.b.c=value" into {a: {b: {c: value}}}. The value is
// parsed as a YAML document, so "5432" is an int and "[x, y]" a sequence.
func parseAssignment(s string) (*config.Node, error) {
	path, raw, ok := strings.Cut(s, "=")
	if !ok {
		return nil, fmt.Errorf("%w: -set %q: expected path=value", config.ErrInvalidArgument, s)
	}
	keys := splitPath(path)
	for _, k := range keys {
		if k == "" {
			return nil, fmt.Errorf("%w: -set %q: empty path segment", config.ErrInvalidArgument, s)
		}
	}

	value, err := config.ParseDocument([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: -set %q: %w", config.ErrInvalidArgument, s, err)
	}

	for i := len(keys) - 1; i > 0; i-- {
		n := config.NewNode()
		n.Set(keys[i], value)
		value = n
	}
	out := config.NewNode()
	out.Set(keys[0], value)
	return out, nil
}

func splitPath(p string) []string {
	return strings.Split(p, ".")
}
