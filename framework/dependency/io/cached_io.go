package io

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-bootstrap/framework/dependency"
	"github.com/km-arc/go-bootstrap/framework/filesystem"
)

// CachedIO keeps the registry of another IO in a generated file.
//
//	cached := io.NewCachedIO(src, file, logger)
//	reg, ok := cached.Cached() // only the file, never the source
//	reg, err = cached.Warm()   // rebuild from the source and rewrite the file
//	removed, err := cached.Clear()
//
// The cache is an optimization only: a file that cannot be decoded is
// logged and treated as absent.
type CachedIO struct {
	io     IO
	file   filesystem.File
	logger *zap.Logger
}

// NewCachedIO wraps io with a cache in file.
func NewCachedIO(io IO, file filesystem.File, logger *zap.Logger) *CachedIO {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedIO{io: io, file: file, logger: logger}
}

// File returns the cache file.
func (c *CachedIO) File() filesystem.File { return c.file }

// Source returns the wrapped IO.
func (c *CachedIO) Source() IO { return c.io }

// Registry returns the cached registry, or that of the wrapped IO when no
// usable cache exists. It never writes the cache.
func (c *CachedIO) Registry() (*dependency.Registry, error) {
	if reg, ok := c.Cached(); ok {
		return reg, nil
	}
	return c.io.Registry()
}

// Cached decodes the cache file. ok is false when there is no file or its
// content is unusable; an empty registry read from a valid file is ok.
func (c *CachedIO) Cached() (reg *dependency.Registry, ok bool) {
	if !c.file.Exists() {
		return nil, false
	}
	data, err := c.file.Read()
	if err != nil {
		c.logger.Warn("dependency cache unreadable", zap.String("file", c.file.Path()), zap.Error(err))
		return nil, false
	}
	reg, err = Decode(data)
	if err != nil {
		c.logger.Warn("dependency cache ignored", zap.String("file", c.file.Path()), zap.Error(err))
		return nil, false
	}
	return reg, true
}

// Warm rebuilds the registry from the wrapped IO and writes it to the cache
// file, creating parent directories as needed.
func (c *CachedIO) Warm() (*dependency.Registry, error) {
	reg, err := c.io.Registry()
	if err != nil {
		return nil, err
	}
	data, err := Encode(reg)
	if err != nil {
		return nil, err
	}
	if err := c.file.Parent().Create(); err != nil {
		return nil, &dependency.CacheWriteError{Path: c.file.Path(), Err: err}
	}
	if err := c.file.Write(data); err != nil {
		return nil, &dependency.CacheWriteError{Path: c.file.Path(), Err: err}
	}

	c.logger.Info("dependency cache warmed",
		zap.String("file", c.file.Path()),
		zap.Int("definitions", reg.Len()),
	)
	return reg, nil
}

// Clear removes the cache file and reports whether one existed.
func (c *CachedIO) Clear() (bool, error) {
	removed, err := c.file.Delete()
	if err != nil {
		return false, err
	}
	if removed {
		c.logger.Info("dependency cache cleared", zap.String("file", c.file.Path()))
	}
	return removed, nil
}
