package diskarb

import "sync"

// Mock collaborators for testing engines without real observers, an
// authorization service, filesystem helpers or device nodes. Each mock
// responds synchronously by default; setting the matching Hold flag parks
// the response until the test flushes it, which is how stage interleavings
// are exercised.

// MockApprovals implements ApprovalSource.
type MockApprovals struct {
	mu sync.Mutex

	EjectResponse        *Dissenter
	MountResponse        *Dissenter
	UnmountResponse      *Dissenter
	ClaimReleaseResponse *Dissenter

	HoldEject   bool
	HoldMount   bool
	HoldUnmount bool

	EjectCalls        int
	MountCalls        int
	UnmountCalls      int
	ClaimReleaseCalls int
	ReleasedOwners    []*Callback

	pendingEject   []func(*Dissenter)
	pendingMount   []func(*Dissenter)
	pendingUnmount []func(*Dissenter)
}

func (m *MockApprovals) EjectApproval(_ *Disk, respond func(*Dissenter)) {
	m.mu.Lock()
	m.EjectCalls++
	if m.HoldEject {
		m.pendingEject = append(m.pendingEject, respond)
		m.mu.Unlock()
		return
	}
	response := m.EjectResponse
	m.mu.Unlock()
	respond(response)
}

func (m *MockApprovals) MountApproval(_ *Disk, respond func(*Dissenter)) {
	m.mu.Lock()
	m.MountCalls++
	if m.HoldMount {
		m.pendingMount = append(m.pendingMount, respond)
		m.mu.Unlock()
		return
	}
	response := m.MountResponse
	m.mu.Unlock()
	respond(response)
}

func (m *MockApprovals) UnmountApproval(_ *Disk, respond func(*Dissenter)) {
	m.mu.Lock()
	m.UnmountCalls++
	if m.HoldUnmount {
		m.pendingUnmount = append(m.pendingUnmount, respond)
		m.mu.Unlock()
		return
	}
	response := m.UnmountResponse
	m.mu.Unlock()
	respond(response)
}

func (m *MockApprovals) ClaimRelease(_ *Disk, owner *Callback, respond func(*Dissenter)) {
	m.mu.Lock()
	m.ClaimReleaseCalls++
	m.ReleasedOwners = append(m.ReleasedOwners, owner)
	response := m.ClaimReleaseResponse
	m.mu.Unlock()
	respond(response)
}

// FlushEject answers every held eject approval with response.
func (m *MockApprovals) FlushEject(response *Dissenter) {
	m.flush(&m.pendingEject, response)
}

// FlushMount answers every held mount approval with response.
func (m *MockApprovals) FlushMount(response *Dissenter) {
	m.flush(&m.pendingMount, response)
}

// FlushUnmount answers every held unmount approval with response.
func (m *MockApprovals) FlushUnmount(response *Dissenter) {
	m.flush(&m.pendingUnmount, response)
}

func (m *MockApprovals) flush(pending *[]func(*Dissenter), response *Dissenter) {
	m.mu.Lock()
	held := *pending
	*pending = nil
	m.mu.Unlock()
	for _, respond := range held {
		respond(response)
	}
}

// MockAuthorizer implements Authorizer.
type MockAuthorizer struct {
	mu sync.Mutex

	Status Return // response for every authorization

	Calls []AuthorizeCall
}

// AuthorizeCall records one authorization round-trip.
type AuthorizeCall struct {
	Disk  *Disk
	UID   uint32
	GID   uint32
	Right Right
	Flags AuthorizeFlags
}

func (m *MockAuthorizer) Authorize(disk *Disk, uid, gid uint32, right Right, flags AuthorizeFlags, respond func(Return)) {
	m.mu.Lock()
	m.Calls = append(m.Calls, AuthorizeCall{Disk: disk, UID: uid, GID: gid, Right: right, Flags: flags})
	status := m.Status
	m.mu.Unlock()
	respond(status)
}

// CallCount returns the number of authorization round-trips.
func (m *MockAuthorizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockFilesystemOps implements FilesystemOps.
type MockFilesystemOps struct {
	mu sync.Mutex

	MountStatus   int
	MountPath     string // mount point to report; "" echoes the requested one
	UnmountStatus int
	RenameStatus  int

	HoldMount   bool
	HoldUnmount bool
	HoldRename  bool

	MountCalls   []FsMountCall
	UnmountCalls []FsUnmountCall
	RenameCalls  []FsRenameCall

	pendingMount   []func(int, string)
	pendingUnmount []func(int)
	pendingRename  []func(int)
}

// FsMountCall records one mount helper invocation.
type FsMountCall struct {
	Disk       *Disk
	Mountpoint string
	Arguments  string
}

// FsUnmountCall records one unmount helper invocation.
type FsUnmountCall struct {
	Fs         Filesystem
	Mountpoint string
	Force      bool
}

// FsRenameCall records one rename helper invocation.
type FsRenameCall struct {
	Fs         Filesystem
	Mountpoint string
	Name       string
}

func (m *MockFilesystemOps) Mount(disk *Disk, mountpoint string, arguments string, respond func(int, string)) {
	m.mu.Lock()
	m.MountCalls = append(m.MountCalls, FsMountCall{Disk: disk, Mountpoint: mountpoint, Arguments: arguments})
	if m.HoldMount {
		m.pendingMount = append(m.pendingMount, respond)
		m.mu.Unlock()
		return
	}
	status := m.MountStatus
	path := m.MountPath
	m.mu.Unlock()
	if path == "" {
		path = mountpoint
	}
	respond(status, path)
}

func (m *MockFilesystemOps) Unmount(fs Filesystem, mountpoint string, force bool, respond func(int)) {
	m.mu.Lock()
	m.UnmountCalls = append(m.UnmountCalls, FsUnmountCall{Fs: fs, Mountpoint: mountpoint, Force: force})
	if m.HoldUnmount {
		m.pendingUnmount = append(m.pendingUnmount, respond)
		m.mu.Unlock()
		return
	}
	status := m.UnmountStatus
	m.mu.Unlock()
	respond(status)
}

func (m *MockFilesystemOps) Rename(fs Filesystem, mountpoint string, name string, respond func(int)) {
	m.mu.Lock()
	m.RenameCalls = append(m.RenameCalls, FsRenameCall{Fs: fs, Mountpoint: mountpoint, Name: name})
	if m.HoldRename {
		m.pendingRename = append(m.pendingRename, respond)
		m.mu.Unlock()
		return
	}
	status := m.RenameStatus
	m.mu.Unlock()
	respond(status)
}

// CompleteMount answers every held mount with the given result.
func (m *MockFilesystemOps) CompleteMount(status int, mountpoint string) {
	m.mu.Lock()
	held := m.pendingMount
	m.pendingMount = nil
	m.mu.Unlock()
	for _, respond := range held {
		respond(status, mountpoint)
	}
}

// CompleteUnmount answers every held unmount with status.
func (m *MockFilesystemOps) CompleteUnmount(status int) {
	m.mu.Lock()
	held := m.pendingUnmount
	m.pendingUnmount = nil
	m.mu.Unlock()
	for _, respond := range held {
		respond(status)
	}
}

// CompleteRename answers every held rename with status.
func (m *MockFilesystemOps) CompleteRename(status int) {
	m.mu.Lock()
	held := m.pendingRename
	m.pendingRename = nil
	m.mu.Unlock()
	for _, respond := range held {
		respond(status)
	}
}

// MockMountPoints implements MountPoints.
type MockMountPoints struct {
	mu sync.Mutex

	MovePath string // path returned for Move; "" reports failure

	Created []MountPointCall
	Removed []string
}

// MountPointCall records one mount-point manager invocation.
type MountPointCall struct {
	Disk   *Disk
	Action MountPointAction
}

func (m *MockMountPoints) CreateMountPoint(disk *Disk, action MountPointAction) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, MountPointCall{Disk: disk, Action: action})
	return m.MovePath
}

func (m *MockMountPoints) RemoveMountPoint(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removed = append(m.Removed, path)
}

// MockDevices implements DeviceOps.
type MockDevices struct {
	mu sync.Mutex

	OpenStatus  int
	EjectStatus int

	OpenCalls  int
	EjectCalls int
	CloseCalls int
}

func (m *MockDevices) OpenReadOnly(_ string) (DeviceHandle, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OpenCalls++
	if m.OpenStatus != 0 {
		return nil, m.OpenStatus
	}
	return &mockDeviceHandle{devices: m}, 0
}

type mockDeviceHandle struct {
	devices *MockDevices
}

func (h *mockDeviceHandle) Eject() int {
	h.devices.mu.Lock()
	defer h.devices.mu.Unlock()
	h.devices.EjectCalls++
	return h.devices.EjectStatus
}

func (h *mockDeviceHandle) Close() {
	h.devices.mu.Lock()
	defer h.devices.mu.Unlock()
	h.devices.CloseCalls++
}

// MockRefresher implements Refresher.
type MockRefresher struct {
	mu sync.Mutex

	Status Return
	Calls  int
}

func (m *MockRefresher) Refresh(_ *Disk) Return {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	return m.Status
}

// MockNotifier implements Notifier.
type MockNotifier struct {
	mu sync.Mutex

	DescriptionChanges []DescriptionChange
	Disappeared        []*Disk
	Logged             []*Disk
}

// DescriptionChange records one description-changed notification.
type DescriptionChange struct {
	Disk *Disk
	Keys []string
}

func (m *MockNotifier) DiskDescriptionChanged(disk *Disk, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DescriptionChanges = append(m.DescriptionChanges, DescriptionChange{Disk: disk, Keys: keys})
}

func (m *MockNotifier) DiskDisappeared(disk *Disk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Disappeared = append(m.Disappeared, disk)
}

func (m *MockNotifier) DiskLog(disk *Disk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logged = append(m.Logged, disk)
}

// Compile-time interface checks
var (
	_ ApprovalSource = (*MockApprovals)(nil)
	_ Authorizer     = (*MockAuthorizer)(nil)
	_ FilesystemOps  = (*MockFilesystemOps)(nil)
	_ MountPoints    = (*MockMountPoints)(nil)
	_ DeviceOps      = (*MockDevices)(nil)
	_ Refresher      = (*MockRefresher)(nil)
	_ Notifier       = (*MockNotifier)(nil)
)
