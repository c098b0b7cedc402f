package config

import (
	"fmt"
	"path"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-bootstrap/framework/config/parser"
	"github.com/km-arc/go-bootstrap/framework/filesystem"
)

// ParameterIO provides the merged parameter tree.
type ParameterIO interface {
	Parameters() (map[string]any, error)
}

// ── ParserParameterIO ─────────────────────────────────────────────────────────

// ParserParameterIO reads a parameters file from every directory of the file
// browser. Files are merged in reverse discovery order so the application
// directory wins over modules, then the files of the environment directory
// are merged on top.
//
//	io := config.NewParserParameterIO(browser, "parameters.yaml", "config")
//	io.SetEnvironment("prod") // also reads config/prod/parameters.yaml
type ParserParameterIO struct {
	browser     filesystem.Browser
	file        string
	path        string
	environment string
}

// NewParserParameterIO creates a reader for file inside path.
func NewParserParameterIO(browser filesystem.Browser, file, path string) *ParserParameterIO {
	return &ParserParameterIO{browser: browser, file: file, path: path}
}

// SetEnvironment sets the name of the environment overlay directory.
func (io *ParserParameterIO) SetEnvironment(env string) { io.environment = env }

func (io *ParserParameterIO) Parameters() (map[string]any, error) {
	params := NewParameters(nil)

	if err := io.merge(params, path.Join(io.path, io.file)); err != nil {
		return nil, err
	}
	if io.environment != "" {
		if err := io.merge(params, path.Join(io.path, io.environment, io.file)); err != nil {
			return nil, err
		}
	}
	return params.All(), nil
}

func (io *ParserParameterIO) merge(params *Parameters, logical string) error {
	files := io.browser.Files(logical)
	for i := len(files) - 1; i >= 0; i-- {
		data, err := files[i].Read()
		if err != nil {
			return fmt.Errorf("config: could not read %s: %w", files[i], err)
		}
		rec, err := parser.ForFile(files[i].Path()).Parse(data)
		if err != nil {
			return fmt.Errorf("config: could not parse %s: %w", files[i], err)
		}
		for _, leaf := range Flatten(rec.Map()) {
			params.Set(leaf.Key, leaf.Value)
		}
	}
	return nil
}

// ── CachedParameterIO ─────────────────────────────────────────────────────────

// CachedParameterIO keeps the merged parameters of another ParameterIO in a
// YAML file. A cache file that cannot be decoded is ignored.
type CachedParameterIO struct {
	io     ParameterIO
	file   filesystem.File
	logger *zap.Logger
}

// NewCachedParameterIO wraps io with a cache in file.
func NewCachedParameterIO(io ParameterIO, file filesystem.File, logger *zap.Logger) *CachedParameterIO {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedParameterIO{io: io, file: file, logger: logger}
}

// File returns the cache file.
func (c *CachedParameterIO) File() filesystem.File { return c.file }

// Parameters returns the cached parameters, or those of the wrapped IO when
// no usable cache exists.
func (c *CachedParameterIO) Parameters() (map[string]any, error) {
	if params, ok := c.Cached(); ok {
		return params, nil
	}
	return c.io.Parameters()
}

// Cached returns the parameters of the cache file, if it holds any.
func (c *CachedParameterIO) Cached() (map[string]any, bool) {
	if !c.file.Exists() {
		return nil, false
	}
	data, err := c.file.Read()
	if err != nil {
		c.logger.Warn("parameter cache unreadable", zap.String("file", c.file.Path()), zap.Error(err))
		return nil, false
	}
	var params map[string]any
	if err := yaml.Unmarshal(data, &params); err != nil || params == nil {
		c.logger.Warn("parameter cache corrupt", zap.String("file", c.file.Path()), zap.Error(err))
		return nil, false
	}
	return params, true
}

// Warm reads the wrapped IO and writes the result to the cache file.
func (c *CachedParameterIO) Warm() (map[string]any, error) {
	params, err := c.io.Parameters()
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("config: could not encode parameters: %w", err)
	}
	if err := c.file.Parent().Create(); err != nil {
		return nil, fmt.Errorf("config: could not write cache %s: %w", c.file, err)
	}
	if err := c.file.Write(data); err != nil {
		return nil, fmt.Errorf("config: could not write cache %s: %w", c.file, err)
	}
	c.logger.Info("parameter cache warmed", zap.String("file", c.file.Path()))
	return params, nil
}

// Clear removes the cache file and reports whether one existed.
func (c *CachedParameterIO) Clear() (bool, error) {
	return c.file.Delete()
}
