package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"zealdisk/disk"
)

// Config is the on-disk configuration. Command line flags take precedence.
type Config struct {
	MaxDisks  int      `yaml:"max_disks"`
	Images    []string `yaml:"images"`
	LogLevel  string   `yaml:"log_level"`
	AssumeYes bool     `yaml:"assume_yes"`
}

func defaultConfig() Config {
	return Config{MaxDisks: disk.DefaultMaxDisks}
}

func defaultConfigPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "zealdisk", "config.yml")
}

// readConfig loads path on top of the defaults. A missing file at the default
// location is not an error; a missing file that was asked for explicitly is.
func readConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	if cfg.MaxDisks <= 0 {
		cfg.MaxDisks = disk.DefaultMaxDisks
	}
	return cfg, nil
}

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	images     []string
	maxDisks   int
	verbose    bool
	quiet      bool
	yes        bool
}

func (g *globalFlags) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&g.configPath, "config", defaultConfigPath(), "configuration file")
	fs.StringArrayVar(&g.images, "image", nil, "use this image file instead of host disks (repeatable)")
	fs.IntVar(&g.maxDisks, "max-disks", disk.DefaultMaxDisks, "maximum number of disks to list")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "debug output")
	fs.BoolVarP(&g.quiet, "quiet", "q", false, "only print errors")
	fs.BoolVarP(&g.yes, "yes", "y", false, "do not ask for confirmation")
}

// load reads the configuration file and overrides it with every flag set on the command line.
func (g *globalFlags) load(fs *pflag.FlagSet) (Config, error) {
	cfg, err := readConfig(g.configPath, fs.Changed("config"))
	if err != nil {
		return cfg, err
	}
	if fs.Changed("image") {
		cfg.Images = g.images
	}
	if fs.Changed("max-disks") {
		cfg.MaxDisks = g.maxDisks
	}
	if fs.Changed("yes") {
		cfg.AssumeYes = g.yes
	}
	switch {
	case g.verbose:
		cfg.LogLevel = "debug"
	case g.quiet:
		cfg.LogLevel = "error"
	}
	return cfg, nil
}
