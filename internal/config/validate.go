package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateTemplates(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.TimeoutSeconds <= 0 {
		return errors.New("tools.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateGeneration() error {
	switch c.Generation.Mode {
	case "product", "axis":
	default:
		return fmt.Errorf("generation.mode %q is not supported (expected product or axis)", c.Generation.Mode)
	}
	if c.Generation.Workers < 1 {
		return errors.New("generation.workers must be >= 1")
	}
	if c.Generation.MaxInvocations < 0 {
		return errors.New("generation.max_invocations must be >= 0")
	}
	return nil
}

func (c *Config) validateTemplates() error {
	if err := ensurePositiveMap(map[string]int{
		"templates.duration":         c.Templates.Duration,
		"templates.animation_frames": c.Templates.AnimationFrames,
	}); err != nil {
		return err
	}
	if c.Templates.Frames < 0 {
		return errors.New("templates.frames must be >= 0 (0 uses templates.duration)")
	}
	if !IsResolution(c.Templates.Resolution) {
		return fmt.Errorf("templates.resolution %q must be WIDTHxHEIGHT", c.Templates.Resolution)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
}

// IsResolution reports whether value has the form WIDTHxHEIGHT with positive
// integer dimensions.
func IsResolution(value string) bool {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(value)), "x")
	if !ok {
		return false
	}
	for _, part := range []string{w, h} {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return false
		}
	}
	return true
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
