// Package build holds build-time information about the voxelflow module.
package build

var (
	// ProjectName is the canonical name of this project.
	ProjectName = "voxelflow"

	// Version is overridden at build time via -ldflags.
	Version = "dev"
)
