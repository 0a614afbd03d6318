package diskarb

// Description keys the engine reads and writes. The description carries
// whatever else the probe layer records; the engine only touches these.
const (
	DescriptionVolumePathKey      = "VolumePath"
	DescriptionVolumeMountableKey = "VolumeMountable"
	DescriptionVolumeNameKey      = "VolumeName"
	DescriptionMediaWholeKey      = "MediaWhole"
	DescriptionMediaPathKey       = "MediaPath"
)

// DiskState is a bitset of per-disk state flags.
type DiskState uint32

const (
	// DiskStateStagedAppear marks a disk whose arrival processing finished;
	// only such disks are eligible for dispatch.
	DiskStateStagedAppear DiskState = 1 << 0

	// DiskStateStagedProbe marks a disk whose filesystem probe is current.
	// Mount clears it to request a re-probe and waits for the prober to
	// set it again.
	DiskStateStagedProbe DiskState = 1 << 1

	// DiskStateCommandActive is set while a stage handler is advancing a
	// request against this disk.
	DiskStateCommandActive DiskState = 1 << 2

	// DiskStateRequireRepair marks a dirty volume; mounting it fails with
	// not-ready until the repair layer clears the flag.
	DiskStateRequireRepair DiskState = 1 << 3

	// DiskStateZombie marks a disk whose media is gone. A zombie never
	// returns to use and is removed from the disk list.
	DiskStateZombie DiskState = 1 << 4

	// DiskStateMountPreferenceNoWrite is engine-private: an approval
	// observer demanded a read-only mount.
	DiskStateMountPreferenceNoWrite DiskState = 1 << 5
)

// Disk is a logical volume or media surface tracked by the daemon.
//
// A disk belongs to exactly one unit. The claim field is a non-owning
// callback handle identifying the owning session, if any.
type Disk struct {
	id          string
	devicePath  string
	unit        *Unit
	filesystem  Filesystem
	description map[string]any
	state       DiskState
	claim       *Callback
	bypath      string
}

// NewDisk creates a disk on the given unit. The disk starts with an empty
// description and no state flags; the arrival layer sets StagedAppear when
// the disk becomes eligible for dispatch.
func NewDisk(id string, unit *Unit) *Disk {
	return &Disk{
		id:          id,
		unit:        unit,
		description: make(map[string]any),
	}
}

// ID returns the disk's stable id.
func (d *Disk) ID() string {
	return d.id
}

// Unit returns the hardware unit beneath the disk.
func (d *Disk) Unit() *Unit {
	return d.unit
}

// DevicePath returns the disk's device node path (e.g. /dev/sdb1).
func (d *Disk) DevicePath() string {
	return d.devicePath
}

// SetDevicePath sets the disk's device node path.
func (d *Disk) SetDevicePath(path string) {
	d.devicePath = path
}

// Filesystem returns the filesystem handle the probe layer bound to the
// disk, or nil.
func (d *Disk) Filesystem() Filesystem {
	return d.filesystem
}

// SetFilesystem binds a filesystem handle to the disk.
func (d *Disk) SetFilesystem(fs Filesystem) {
	d.filesystem = fs
}

// Description returns the value stored under key, or nil.
func (d *Disk) Description(key string) any {
	return d.description[key]
}

// SetDescription stores value under key. A nil value deletes the key.
func (d *Disk) SetDescription(key string, value any) {
	if value == nil {
		delete(d.description, key)
	} else {
		d.description[key] = value
	}
}

// StringDescription returns the string stored under key and whether the
// key holds a string.
func (d *Disk) StringDescription(key string) (string, bool) {
	s, ok := d.description[key].(string)
	return s, ok
}

// BoolDescription returns the boolean stored under key and whether the
// key holds a boolean.
func (d *Disk) BoolDescription(key string) (bool, bool) {
	b, ok := d.description[key].(bool)
	return b, ok
}

// GetState reports whether every bit in state is set.
func (d *Disk) GetState(state DiskState) bool {
	return d.state&state == state
}

// SetState sets or clears the given bits.
func (d *Disk) SetState(state DiskState, value bool) {
	if value {
		d.state |= state
	} else {
		d.state &^= state
	}
}

// Claim returns the callback handle of the owning session, or nil.
func (d *Disk) Claim() *Callback {
	return d.claim
}

// SetClaim installs or clears the owning session's callback handle.
func (d *Disk) SetClaim(claim *Callback) {
	d.claim = claim
}

// Bypath returns the by-path bookkeeping entry for the disk's mount
// point, or "".
func (d *Disk) Bypath() string {
	return d.bypath
}

// SetBypath records the by-path bookkeeping entry. An empty path clears it.
func (d *Disk) SetBypath(path string) {
	d.bypath = path
}
