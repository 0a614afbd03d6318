package diskarb

// The approval, authorization and filesystem hooks below are asynchronous:
// each receives a respond function it must call exactly once, from any
// goroutine, when the round-trip finishes, and the engine posts the
// response back onto its loop. The mount-point, device, refresh and
// notifier hooks are plain synchronous calls made on the loop.

// Filesystem is an opaque handle describing the filesystem bound to a
// disk by the probe layer. The engine passes it through to the helpers.
type Filesystem interface {
	Name() string
}

// filesystemName is the trivial Filesystem used by configuration and tests.
type filesystemName string

func (f filesystemName) Name() string { return string(f) }

// NewFilesystem returns a plain named filesystem handle.
func NewFilesystem(name string) Filesystem {
	return filesystemName(name)
}

// ApprovalSource runs approval round-trips against the registered
// observer set. respond receives nil when no observer objects.
type ApprovalSource interface {
	EjectApproval(disk *Disk, respond func(*Dissenter))
	MountApproval(disk *Disk, respond func(*Dissenter))
	UnmountApproval(disk *Disk, respond func(*Dissenter))
	ClaimRelease(disk *Disk, owner *Callback, respond func(*Dissenter))
}

// Right names an authorization right.
type Right string

const (
	RightMount   Right = "mount"
	RightUnmount Right = "unmount"
)

// AuthorizeFlags modify an authorization request.
type AuthorizeFlags uint32

const (
	AuthorizeForce    AuthorizeFlags = 1 << 0
	AuthorizeInteract AuthorizeFlags = 1 << 1
)

// Authorizer checks a caller's privilege for a right. respond receives
// ReturnSuccess or a failure status (normally ReturnNotPrivileged).
type Authorizer interface {
	Authorize(disk *Disk, uid, gid uint32, right Right, flags AuthorizeFlags, respond func(Return))
}

// FilesystemOps invokes the mount, unmount and rename helpers. Status
// values are kernel errnos (0 for success). Mount responds with the
// mount point actually used; the engine passes "" to let the helper
// allocate one.
type FilesystemOps interface {
	Mount(disk *Disk, mountpoint string, arguments string, respond func(status int, mountpoint string))
	Unmount(fs Filesystem, mountpoint string, force bool, respond func(status int))
	Rename(fs Filesystem, mountpoint string, name string, respond func(status int))
}

// MountPointAction selects what the mount-point manager does.
type MountPointAction int

const (
	MountPointActionMake MountPointAction = iota
	MountPointActionMove
)

// MountPoints manages mount-point directories.
type MountPoints interface {
	// CreateMountPoint allocates (or, for Move, relocates) the disk's
	// mount point and returns its path, or "" on failure.
	CreateMountPoint(disk *Disk, action MountPointAction) string

	// RemoveMountPoint removes the directory after a successful unmount.
	RemoveMountPoint(path string)
}

// DeviceHandle is an open read-only device node.
type DeviceHandle interface {
	// Eject issues the eject ioctl; the result is an errno value.
	Eject() int
	Close()
}

// DeviceOps opens device nodes for the eject path. The status is an
// errno value; the handle is non-nil only when status is 0.
type DeviceOps interface {
	OpenReadOnly(path string) (DeviceHandle, int)
}

// Refresher re-reads a disk's volume state from the kernel. A non-zero
// status completes the request as not-supported.
type Refresher interface {
	Refresh(disk *Disk) Return
}

// Notifier fans engine events out to registered observers.
type Notifier interface {
	DiskDescriptionChanged(disk *Disk, keys ...string)
	DiskDisappeared(disk *Disk)
	DiskLog(disk *Disk)
}

// No-op collaborator defaults. Engine construction substitutes these for
// nil config fields so a partially wired daemon still runs.

type approveAll struct{}

func (approveAll) EjectApproval(_ *Disk, respond func(*Dissenter))   { respond(nil) }
func (approveAll) MountApproval(_ *Disk, respond func(*Dissenter))   { respond(nil) }
func (approveAll) UnmountApproval(_ *Disk, respond func(*Dissenter)) { respond(nil) }
func (approveAll) ClaimRelease(_ *Disk, _ *Callback, respond func(*Dissenter)) {
	respond(nil)
}

type authorizeAll struct{}

func (authorizeAll) Authorize(_ *Disk, _, _ uint32, _ Right, _ AuthorizeFlags, respond func(Return)) {
	respond(ReturnSuccess)
}

type noFilesystemOps struct{}

func (noFilesystemOps) Mount(_ *Disk, mountpoint string, _ string, respond func(int, string)) {
	respond(0, mountpoint)
}
func (noFilesystemOps) Unmount(_ Filesystem, _ string, _ bool, respond func(int)) {
	respond(0)
}

func (noFilesystemOps) Rename(_ Filesystem, _ string, _ string, respond func(int)) {
	respond(0)
}

type noMountPoints struct{}

func (noMountPoints) CreateMountPoint(_ *Disk, _ MountPointAction) string { return "" }
func (noMountPoints) RemoveMountPoint(_ string)                           {}

type noDevices struct{}

func (noDevices) OpenReadOnly(_ string) (DeviceHandle, int) { return nopDeviceHandle{}, 0 }

type nopDeviceHandle struct{}

func (nopDeviceHandle) Eject() int { return 0 }
func (nopDeviceHandle) Close()     {}

type noRefresher struct{}

func (noRefresher) Refresh(_ *Disk) Return { return ReturnSuccess }

type noNotifier struct{}

func (noNotifier) DiskDescriptionChanged(_ *Disk, _ ...string) {}
func (noNotifier) DiskDisappeared(_ *Disk)                     {}
func (noNotifier) DiskLog(_ *Disk)                             {}
