package diskarb

import "github.com/ehrlich-b/go-diskarb/internal/constants"

// Re-export constants for public API
const (
	RootVolumePath       = constants.RootVolumePath
	MountArgumentUpdate  = constants.MountArgumentUpdate
	MountArgumentNoWrite = constants.MountArgumentNoWrite
	UnmountArgumentForce = constants.UnmountArgumentForce
	DefaultMountRoot     = constants.DefaultMountRoot
	DefaultMetricsListen = constants.DefaultMetricsListen
)
