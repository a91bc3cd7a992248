/*
Package config loads the optional YAML configuration file.
*/
package config

import (
	"fmt"
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds the defaults used by the command line tool.
type Config struct {
	Style  string `yaml:"style"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	DB     string `yaml:"db"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Style:  "transgender",
		Width:  128,
		Height: 64,
	}
}

// Load reads the configuration from file. A missing file is not an error
// and yields the built-in configuration. Fields absent from the file keep
// their default value.
func Load(file string) (*Config, error) {
	c := Default()

	b, err := ioutil.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read configuration file '%s': %w", file, err)
	}

	if err := yaml.UnmarshalStrict(b, c); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file '%s': %w", file, err)
	}

	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d in '%s'", c.Width, c.Height, file)
	}

	return c, nil
}
