package config

const (
	defaultConfigPath         = "~/.config/corpus-replicator/config.toml"
	projectConfigName         = "replicator.toml"
	defaultOutputDir          = "./corpus"
	defaultLogDir             = "~/.local/share/corpus-replicator/logs"
	defaultFFmpegBinary       = "ffmpeg"
	defaultImageMagickBinary  = "convert"
	defaultToolTimeoutSeconds = 600
	defaultGenerationMode     = "product"
	defaultWorkers            = 1
	defaultTemplateDuration   = 1
	defaultTemplateFrames     = 0
	defaultAnimationFrames    = 5
	defaultResolution         = "1280x768"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir(),
		},
		Tools: Tools{
			FFmpeg:         defaultFFmpegBinary,
			ImageMagick:    defaultImageMagickBinary,
			TimeoutSeconds: defaultToolTimeoutSeconds,
		},
		Generation: Generation{
			Mode:             defaultGenerationMode,
			Workers:          defaultWorkers,
			RemoveDuplicates: true,
		},
		Templates: Templates{
			Duration:        defaultTemplateDuration,
			Frames:          defaultTemplateFrames,
			AnimationFrames: defaultAnimationFrames,
			Resolution:      defaultResolution,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
