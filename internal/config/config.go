// Package config loads tracescope.toml.
//
// The file is optional. It is looked up from the working directory towards
// the filesystem root; the first one found wins. Command-line flags override
// every value read here.
//
//	[ui]
//	mode = "auto"      # auto|on|off
//	color = "auto"     # auto|on|off
//
//	[log]
//	level = "warn"     # debug|info|warn|error|silent
//	format = "text"    # text|json
//
//	[optrace]
//	output = ""        # file path, "-" for stderr
//	level = "off"      # off|error|session|command|debug
//	mode = "stream"    # stream|ring|both
//	format = "auto"    # auto|text|ndjson
//	ring_size = 4096
//
//	[advice]
//	output = "-"       # file path, "-" for stdout
//	format = "json"    # json|msgpack
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// FileName is the name looked up by Find.
const FileName = "tracescope.toml"

// Config is the decoded file.
type Config struct {
	UI      UI      `toml:"ui"`
	Log     Log     `toml:"log"`
	Optrace Optrace `toml:"optrace"`
	Advice  Advice  `toml:"advice"`

	// Path is the file the values came from; empty for defaults.
	Path string `toml:"-"`
}

type UI struct {
	Mode  string `toml:"mode"`
	Color string `toml:"color"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Optrace struct {
	Output   string `toml:"output"`
	Level    string `toml:"level"`
	Mode     string `toml:"mode"`
	Format   string `toml:"format"`
	RingSize int    `toml:"ring_size"`
}

type Advice struct {
	Output string `toml:"output"`
	Format string `toml:"format"`
}

// Default returns the values used when no file is found.
func Default() Config {
	return Config{
		UI:      UI{Mode: "auto", Color: "auto"},
		Log:     Log{Level: "warn", Format: "text"},
		Optrace: Optrace{Level: "off", Mode: "stream", Format: "auto", RingSize: 4096},
		Advice:  Advice{Output: "-", Format: "json"},
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, errors.Wrap(err, "resolve start directory")
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, errors.Wrapf(err, "stat %q", candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Discover loads the nearest config above startDir, or Default when there
// is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Default(), err
	}
	return Load(path)
}

// Load decodes path over Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "%s: failed to parse TOML", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.WithHint(
			errors.Newf("%s: unknown keys: %s", path, strings.Join(keys, ", ")),
			"valid sections are [ui], [log], [optrace] and [advice]",
		)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, path)
	}
	return cfg, nil
}

// Validate checks the enumerated values.
func (c *Config) Validate() error {
	checks := []struct {
		key, value string
		allowed    []string
	}{
		{"ui.mode", c.UI.Mode, []string{"auto", "on", "off"}},
		{"ui.color", c.UI.Color, []string{"auto", "on", "off"}},
		{"log.format", c.Log.Format, []string{"text", "json"}},
		{"optrace.mode", c.Optrace.Mode, []string{"stream", "ring", "both"}},
		{"optrace.format", c.Optrace.Format, []string{"auto", "text", "ndjson"}},
		{"advice.format", c.Advice.Format, []string{"json", "msgpack"}},
	}
	for _, ch := range checks {
		if !oneOf(ch.value, ch.allowed) {
			return errors.Newf("invalid %s %q (expected %s)", ch.key, ch.value, strings.Join(ch.allowed, "|"))
		}
	}
	if c.Optrace.RingSize < 0 {
		return errors.Newf("invalid optrace.ring_size %d", c.Optrace.RingSize)
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
