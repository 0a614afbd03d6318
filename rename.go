package diskarb

import "github.com/ehrlich-b/go-diskarb/internal/constants"

// dispatchRename advances a rename request. Rename has a single stage,
// gated on the unit: precondition checks, then the filesystem helper.
func (e *Engine) dispatchRename(request *Request) bool {
	disk := request.Disk()

	if disk.Unit().GetState(UnitStateCommandActive) {
		return false
	}

	status := ReturnSuccess

	// Determine whether the disk is mountable.
	if mountable, ok := disk.BoolDescription(DescriptionVolumeMountableKey); ok && !mountable {
		status = ReturnUnsupported
	}

	// Determine whether the disk is mounted.
	mountpoint, mounted := disk.StringDescription(DescriptionVolumePathKey)
	if !mounted {
		status = ReturnNotMounted
	}

	// Determine whether the name is valid.
	if request.Argument2() == nil {
		status = ReturnUnsupported
	}

	if status != ReturnSuccess {
		e.DispatchCompletion(request, status)
		e.Signal()
		return true
	}

	e.retain(request)
	disk.SetState(DiskStateCommandActive, true)
	disk.Unit().SetState(UnitStateCommandActive, true)

	e.logger.Debug("renaming disk", "id", disk.ID())

	e.filesystems.Rename(disk.Filesystem(), mountpoint, stringArgument(request.Argument2()), e.renameResponder(request))
	return true
}

// renameResponder finishes a rename: update the volume name, and unless
// the volume is root-mounted, move the mount point with it.
func (e *Engine) renameResponder(request *Request) func(status int) {
	return func(status int) {
		e.loop.Post(func() {
			disk := request.Disk()

			if status != 0 {
				e.logger.Info("unable to rename disk", "id", disk.ID(), "status", UnixErr(status))
			} else {
				name := stringArgument(request.Argument2())

				if current, _ := disk.StringDescription(DescriptionVolumeNameKey); current != name {
					var keys []string

					disk.SetDescription(DescriptionVolumeNameKey, name)
					keys = append(keys, DescriptionVolumeNameKey)

					mountpoint, _ := disk.StringDescription(DescriptionVolumePathKey)
					if mountpoint == constants.RootVolumePath {
						// The root volume's mount point never moves; only
						// its by-path entry follows the new name.
						if moved := e.mounts.CreateMountPoint(disk, MountPointActionMove); moved != "" {
							disk.SetBypath(moved)
						}
					} else {
						if moved := e.mounts.CreateMountPoint(disk, MountPointActionMove); moved != "" {
							disk.SetBypath(moved)
							disk.SetDescription(DescriptionVolumePathKey, moved)
							keys = append(keys, DescriptionVolumePathKey)
						}
					}

					e.notifier.DiskDescriptionChanged(disk, keys...)
				}

				e.logger.Debug("renamed disk", "id", disk.ID())
			}

			e.DispatchCompletion(request, UnixErr(status))

			disk.Unit().SetState(UnitStateCommandActive, false)
			disk.SetState(DiskStateCommandActive, false)
			e.Signal()
			e.release(request)
		})
	}
}
