package deps

import (
	"strings"

	"replicator/internal/config"
)

// Requirement defines an external tool the replicator relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ToolRequirements lists the tools used for generation. ffmpeg creates every
// template and most outputs; ImageMagick is only needed by image recipes.
func ToolRequirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Generates templates and runs ffmpeg recipes",
		},
		{
			Name:        "ImageMagick",
			Command:     cfg.ImageMagickBinary(),
			Description: "Runs imagemagick recipes",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := ResolveTool(req.Name, req.Command)
		status.Description = strings.TrimSpace(req.Description)
		status.Optional = req.Optional
		results = append(results, status)
	}
	return results
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
