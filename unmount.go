package diskarb

// dispatchUnmount advances an unmount request: approve, authorize when
// demanded, then invoke the unmount helper. A disk whose media is already
// gone becomes a zombie after a successful unmount.
func (e *Engine) dispatchUnmount(request *Request) bool {
	disk := request.Disk()

	if request.Link() != nil {
		if disk.Unit().GetState(UnitStateCommandActive) {
			return false
		}
	}

	// Commence the unmount approval.
	if !request.GetState(RequestStateStagedApprove) {
		status := ReturnSuccess

		// Determine whether the disk is mountable.
		if mountable, ok := disk.BoolDescription(DescriptionVolumeMountableKey); ok && !mountable {
			status = ReturnUnsupported
		}

		// Determine whether the disk is mounted.
		if _, mounted := disk.StringDescription(DescriptionVolumePathKey); !mounted {
			status = ReturnNotMounted
		}

		if status != ReturnSuccess {
			e.DispatchCompletion(request, status)
			e.Signal()
			return true
		}

		e.retain(request)
		disk.SetState(DiskStateCommandActive, true)
		request.SetState(RequestStateStagedApprove, true)
		e.approvals.UnmountApproval(disk, e.approvalResponder(request, KindUnmount))
		return false
	}

	// Commence the unmount authorization. As with eject, the round-trip
	// runs only when an observer demanded it.
	if !request.GetState(RequestStateStagedAuthorize) {
		status := ReturnSuccess

		if dissenter := request.Dissenter(); dissenter != nil {
			if dissenter.Status() == ResponseRequireAuthorize {
				request.SetDissenter(nil)
				status = ReturnNotPrivileged
			}
		}

		if status != ReturnSuccess {
			e.retain(request)
			disk.SetState(DiskStateCommandActive, true)
			request.SetState(RequestStateStagedAuthorize, true)
			e.authorize(request, RightUnmount)
			return false
		}
		request.SetState(RequestStateStagedAuthorize, true)
	}

	if dissenter := request.Dissenter(); dissenter != nil {
		e.dispatchCallback(request, dissenter)
		e.Signal()
		return true
	}

	// Commence the unmount.
	if disk.Unit().GetState(UnitStateCommandActive) {
		return false
	}

	options := UnmountOptions(request.Argument1())

	e.retain(request)
	disk.SetState(DiskStateCommandActive, true)
	disk.Unit().SetState(UnitStateCommandActive, true)

	e.logger.Debug("unmounting disk", "id", disk.ID())

	mountpoint, _ := disk.StringDescription(DescriptionVolumePathKey)
	e.filesystems.Unmount(disk.Filesystem(), mountpoint, options&UnmountOptionForce != 0, e.unmountResponder(request))
	return true
}

// unmountResponder finishes an unmount: tear down the mount point, and if
// the media is gone, retire the disk from the registry.
func (e *Engine) unmountResponder(request *Request) func(status int) {
	return func(status int) {
		e.loop.Post(func() {
			disk := request.Disk()

			if status != 0 {
				e.logger.Info("unable to unmount disk", "id", disk.ID(), "status", UnixErr(status))
				request.SetDissenter(NewDissenter(UnixErr(status), ""))
			} else {
				mountpoint, _ := disk.StringDescription(DescriptionVolumePathKey)
				e.mounts.RemoveMountPoint(mountpoint)
				disk.SetBypath("")

				e.logger.Debug("unmounted disk", "id", disk.ID())

				if _, present := disk.StringDescription(DescriptionMediaPathKey); present {
					disk.SetDescription(DescriptionVolumePathKey, nil)
					e.notifier.DiskDescriptionChanged(disk, DescriptionVolumePathKey)
				} else {
					// The media left while the volume was mounted; the disk
					// is done for.
					e.logger.Debug("removed disk", "id", disk.ID())

					e.notifier.DiskDisappeared(disk)
					disk.SetDescription(DescriptionVolumePathKey, nil)
					disk.SetState(DiskStateZombie, true)
					e.removeDisk(disk)
				}
			}

			e.DispatchCompletion(request, UnixErr(status))

			disk.Unit().SetState(UnitStateCommandActive, false)
			disk.SetState(DiskStateCommandActive, false)
			e.Signal()
			e.release(request)
		})
	}
}
