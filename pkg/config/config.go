// Package config loads blockseg settings from a config file.
//
// The file is TOML by default; a .yaml or .yml extension selects YAML. Every
// key mirrors a command-line flag, so a value in the file acts as the flag's
// default and a flag given explicitly on the command line wins:
//
//	# ~/.config/blockseg/config.toml
//	block_height = 50
//	block_width  = 50
//	threshold    = 0.85
//	formats      = ["png", "json"]
//
//	[cache]
//	redis_addr = "localhost:6379"
//
//	[store]
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/pipeline"
)

const appName = "blockseg"

// Config is the contents of a config file. Zero values mean "not set".
type Config struct {
	// Pipeline options
	BlockHeight     int      `toml:"block_height" yaml:"block_height"`
	BlockWidth      int      `toml:"block_width" yaml:"block_width"`
	Grayscale       bool     `toml:"grayscale" yaml:"grayscale"`
	ColorShading    bool     `toml:"color_shading" yaml:"color_shading"`
	Threshold       float64  `toml:"threshold" yaml:"threshold"`
	ShadeWeight     float64  `toml:"shade_weight" yaml:"shade_weight"`
	ShadingFloor    float64  `toml:"shading_floor" yaml:"shading_floor"`
	Seed            uint64   `toml:"seed" yaml:"seed"`
	Oracle          string   `toml:"oracle" yaml:"oracle"`
	Workers         int      `toml:"workers" yaml:"workers"`
	SkipMaterialize bool     `toml:"skip_materialize" yaml:"skip_materialize"`
	Overlay         float64  `toml:"overlay" yaml:"overlay"`
	Formats         []string `toml:"formats" yaml:"formats"`
	Quality         int      `toml:"quality" yaml:"quality"`
	DPI             float64  `toml:"dpi" yaml:"dpi"`

	Cache  CacheConfig  `toml:"cache" yaml:"cache"`
	Store  StoreConfig  `toml:"store" yaml:"store"`
	Server ServerConfig `toml:"server" yaml:"server"`
}

// CacheConfig selects the cache backend. RedisAddr takes precedence over Dir.
type CacheConfig struct {
	Dir           string `toml:"dir" yaml:"dir"`
	RedisAddr     string `toml:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `toml:"redis_password" yaml:"redis_password"`
	RedisDB       int    `toml:"redis_db" yaml:"redis_db"`
}

// StoreConfig selects the run store backend. MongoURI takes precedence over Dir.
type StoreConfig struct {
	Dir           string `toml:"dir" yaml:"dir"`
	MongoURI      string `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database" yaml:"mongo_database"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// DefaultPath returns $XDG_CONFIG_HOME/blockseg/config.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config file at path. An empty path loads DefaultPath and
// treats a missing default file as an empty config; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return &Config{}, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return &Config{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}
	return Parse(data, path)
}

// Parse decodes config data. The format is chosen by the extension of name.
func Parse(data []byte, name string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", name)
		}
	default:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", name)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s: unknown key %q", name, undecoded[0].String())
		}
	}
	return &cfg, nil
}

// IsSet reports whether a flag was given on the command line.
type IsSet func(flag string) bool

// Apply copies configured values into opts for every option whose flag was
// not set explicitly. Flag names are the kebab-case form of the keys.
func (c *Config) Apply(opts *pipeline.Options, isSet IsSet) {
	if isSet == nil {
		isSet = func(string) bool { return false }
	}
	setInt := func(flag string, dst *int, v int) {
		if v != 0 && !isSet(flag) {
			*dst = v
		}
	}
	setFloat := func(flag string, dst *float64, v float64) {
		if v != 0 && !isSet(flag) {
			*dst = v
		}
	}
	setBool := func(flag string, dst *bool, v bool) {
		if v && !isSet(flag) {
			*dst = v
		}
	}

	setInt("block-height", &opts.BlockHeight, c.BlockHeight)
	setInt("block-width", &opts.BlockWidth, c.BlockWidth)
	setBool("grayscale", &opts.Grayscale, c.Grayscale)
	setBool("color-shading", &opts.ColorShading, c.ColorShading)
	setFloat("threshold", &opts.Threshold, c.Threshold)
	setFloat("shade-weight", &opts.ShadeWeight, c.ShadeWeight)
	setFloat("shading-floor", &opts.ShadingFloor, c.ShadingFloor)
	setInt("workers", &opts.Workers, c.Workers)
	setBool("skip-materialize", &opts.SkipMaterialize, c.SkipMaterialize)
	setFloat("overlay", &opts.Overlay, c.Overlay)
	setInt("quality", &opts.Quality, c.Quality)
	setFloat("dpi", &opts.DPI, c.DPI)

	if c.Seed != 0 && !isSet("seed") {
		opts.Seed = c.Seed
	}
	if c.Oracle != "" && !isSet("oracle") {
		opts.Oracle = c.Oracle
	}
	if len(c.Formats) > 0 && !isSet("format") {
		opts.Formats = append([]string(nil), c.Formats...)
	}
}
