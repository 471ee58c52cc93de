package preproc

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration file.
//
//	defines:
//	  DEBUG: "1"
//	  EMPTY: ""
//	undefines: [LEGACY]
//	log_level: debug
//	external: false
type Config struct {
	Defines   map[string]string `yaml:"defines"`
	Undefines []string          `yaml:"undefines"`
	LogLevel  string            `yaml:"log_level"`
	External  bool              `yaml:"external"`
}

// LoadConfig reads a YAML configuration file. Unknown keys are an error.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// Options converts the configuration to preprocessing options.
func (c *Config) Options() *Options {
	opts := &Options{
		Defines:     make(map[string]string, len(c.Defines)),
		Undefines:   append([]string(nil), c.Undefines...),
		UseExternal: c.External,
	}
	for name, value := range c.Defines {
		opts.Defines[name] = value
	}
	return opts
}
