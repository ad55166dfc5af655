package hierarchy

import (
	"github.com/kbukum/statekit/validation"
)

// Config controls path inference and root selection.
type Config struct {
	// RootName is the path of the manager that becomes the tree root.
	RootName string `yaml:"root_name" mapstructure:"root_name" validate:"required"`
	// Separator joins path segments.
	Separator string `yaml:"separator" mapstructure:"separator" validate:"required"`
	// SourceRoot is stripped from source files before inference. When empty
	// the common root of all source files is used.
	SourceRoot string `yaml:"source_root" mapstructure:"source_root"`
	// SegmentDelimiters are characters inside a directory name that also
	// split segments, so "app-health" becomes "app.health".
	SegmentDelimiters string `yaml:"segment_delimiters" mapstructure:"segment_delimiters"`
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.RootName == "" {
		c.RootName = "app"
	}
	if c.Separator == "" {
		c.Separator = "."
	}
	if c.SegmentDelimiters == "" {
		c.SegmentDelimiters = "-"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
