// Package constants defines shared defaults for the go-diskarb project
package constants

// Default daemon configuration values
const (
	// DefaultMetricsListen is the default metrics endpoint address
	DefaultMetricsListen = "localhost:9277"

	// DefaultMountRoot is the directory beneath which mount points are allocated
	DefaultMountRoot = "/run/media"

	// DefaultLogLevel is the default logging level name
	DefaultLogLevel = "info"
)

// RootVolumePath is the mount path of a volume mounted at the filesystem root.
// A rename of such a volume changes its name only; the mount point never moves.
const RootVolumePath = "file://localhost/"

// Filesystem helper argument tokens. These are part of the helper contract
// and must match what the mount/unmount helpers accept.
const (
	MountArgumentUpdate      = "update"
	MountArgumentUpdateShort = "-u"
	MountArgumentNoWrite     = "rdonly"
	UnmountArgumentForce     = "force"
)
