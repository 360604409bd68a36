package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeGeneration()
	c.normalizeTemplates()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv("REPLICATOR_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutputDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if value, ok := os.LookupEnv("REPLICATOR_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFmpeg = strings.TrimSpace(value)
	}
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.ImageMagick = strings.TrimSpace(c.Tools.ImageMagick)
	if value, ok := os.LookupEnv("REPLICATOR_IMAGEMAGICK"); ok && strings.TrimSpace(value) != "" {
		c.Tools.ImageMagick = strings.TrimSpace(value)
	}
	if c.Tools.ImageMagick == "" {
		c.Tools.ImageMagick = defaultImageMagickBinary
	}
	if c.Tools.TimeoutSeconds == 0 {
		c.Tools.TimeoutSeconds = defaultToolTimeoutSeconds
	}
}

func (c *Config) normalizeGeneration() {
	c.Generation.Mode = strings.ToLower(strings.TrimSpace(c.Generation.Mode))
	if c.Generation.Mode == "" {
		c.Generation.Mode = defaultGenerationMode
	}
	if c.Generation.Workers == 0 {
		c.Generation.Workers = defaultWorkers
	}
	if c.Generation.MaxInvocations < 0 {
		c.Generation.MaxInvocations = 0
	}
}

func (c *Config) normalizeTemplates() {
	c.Templates.Resolution = strings.ToLower(strings.TrimSpace(c.Templates.Resolution))
	if c.Templates.Resolution == "" {
		c.Templates.Resolution = defaultResolution
	}
	if c.Templates.Duration == 0 {
		c.Templates.Duration = defaultTemplateDuration
	}
	if c.Templates.AnimationFrames == 0 {
		c.Templates.AnimationFrames = defaultAnimationFrames
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
