// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader compiles WGSL shader programs to SPIR-V with naga and
// caches the results by source hash.
package shader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/gogpu/naga"
)

// nopHandler silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

func slogger() *slog.Logger { return loggerPtr.Load() }

// SetLogger updates the package-level logger.
// Called from sg.SetLogger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// compileWGSL is replaced in tests.
var compileWGSL = naga.Compile

// Program is a compiled shader.
type Program struct {
	Label string
	Key   uint64
	SPIRV []byte
}

// Words returns the SPIR-V module as little-endian 32-bit words.
func (p *Program) Words() []uint32 {
	words := make([]uint32, len(p.SPIRV)/4)
	for i := range words {
		words[i] = uint32(p.SPIRV[i*4]) |
			uint32(p.SPIRV[i*4+1])<<8 |
			uint32(p.SPIRV[i*4+2])<<16 |
			uint32(p.SPIRV[i*4+3])<<24
	}
	return words
}

var (
	mu       sync.Mutex
	programs = make(map[uint64]*Program)
	compiles atomic.Uint64
)

// Key returns the cache key of a WGSL source.
func Key(source string) uint64 {
	return xxhash.Sum64String(source)
}

// Compile returns the program for source, compiling it on first use.
// Failed compilations are not cached.
func Compile(label, source string) (*Program, error) {
	key := Key(source)

	mu.Lock()
	defer mu.Unlock()
	if p, ok := programs[key]; ok {
		return p, nil
	}
	spirv, err := compileWGSL(source)
	compiles.Add(1)
	if err != nil {
		slogger().Warn("shader: compile failed", "label", label, "err", err)
		return nil, fmt.Errorf("shader: compile %q: %w", label, err)
	}
	p := &Program{Label: label, Key: key, SPIRV: spirv}
	programs[key] = p
	slogger().Debug("shader: compiled", "label", label, "key", key, "bytes", len(spirv))
	return p, nil
}

// Compiles returns how many times the compiler ran.
func Compiles() uint64 { return compiles.Load() }

// Purge drops every cached program.
func Purge() {
	mu.Lock()
	defer mu.Unlock()
	clear(programs)
}
