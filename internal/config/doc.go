// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config resolves hierarchical YAML configuration.
//
// A root document names its default sections under a reserved "defaults" key:
//
//	defaults:
//	  - db: prod
//	  - cache: ~
//	service:
//	  port: 8080
//
// Resolution loads <ConfigPath>/db/prod.yaml into root["db"], skips cache
// (null stem), drops the "defaults" key, then applies full overrides
// (top-level replace) and partial overrides (recursive merge). The result is
// a tree of *Node values, memoized by the Resolver that produced it.
package config
